//go:build generate
// +build generate

// generate the example provider from the petstore test spec
//go:generate go run ./cmd/generate-tf-provider --spec testdata/petstore-v30.yaml --dialect 3.0 --config testdata/provider.yaml --target example/terraform-provider-petstore --provider-name petstore --author acme

package gen
