package middleware_test

import "github.com/bytespace-io/bytespace/internal/domain/principal"

func testPrincipal(username string, super bool) *principal.Principal {
	return &principal.Principal{
		UserID:     "u-" + username,
		Username:   username,
		SuperAdmin: super,
	}
}
