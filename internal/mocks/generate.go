package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name "Directory|MasterySource" --dir ../domain/account --output domain/account --outpkg accountmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name "LiveGameSource|HistorySource" --dir ../domain/match --output domain/match --outpkg matchmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Catalog --dir ../domain/champion --output domain/champion --outpkg championmock --filename catalog_mock.go
