// Package mocks holds gomock doubles for the cookieauth interfaces.
//
// To regenerate after an interface change, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	dir := mocks.NewMockUserDirectory(ctrl)
//	dir.EXPECT().FindByEmail(gomock.Any(), "a@b.c").Return(user, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_directory_mock.go github.com/MrEthical07/cookieauth UserDirectory
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=password_hasher_mock.go github.com/MrEthical07/cookieauth PasswordHasher
