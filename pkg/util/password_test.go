package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "Seeded admin password", password: "Integr4tion-pass", wantErr: false},
		{name: "Unicode password", password: "관리자비밀번호2024", wantErr: false},
		// bcrypt 는 72바이트를 넘는 입력을 거부
		{name: "Longer than 72 bytes", password: strings.Repeat("a1", 40), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, bcryptCost, cost)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("toolchest-admin-01")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{name: "Matching password", hash: hash, password: "toolchest-admin-01", want: true},
		{name: "Case differs", hash: hash, password: "Toolchest-Admin-01", want: false},
		{name: "Trailing whitespace", hash: hash, password: "toolchest-admin-01 ", want: false},
		{name: "Empty password", hash: hash, password: "", want: false},
		{name: "Hash is not bcrypt", hash: "toolchest-admin-01", password: "toolchest-admin-01", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hash, tt.password))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("editor-pass-42")
	require.NoError(t, err)
	second, err := HashPassword("editor-pass-42")
	require.NoError(t, err)

	// 같은 비밀번호라도 솔트가 달라 해시가 다름
	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "editor-pass-42"))
	assert.True(t, VerifyPassword(second, "editor-pass-42"))
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "Letters and digits", password: "toolchest2024", wantErr: false},
		{name: "Exactly minimum length", password: "abcdefghi1", wantErr: false},
		{name: "Hangul letters count", password: "도구상자관리자비번99", wantErr: false},
		{name: "Too short", password: "abc123", wantErr: true},
		{name: "Letters only", password: "onlyletters-here", wantErr: true},
		{name: "Digits only", password: "12345678901", wantErr: true},
		{name: "Empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordStrength(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
