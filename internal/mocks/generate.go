package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Gateway --dir ../crud --output crud --outpkg crudmock --filename gateway_mock.go
