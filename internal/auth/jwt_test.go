package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewJWTVerifier(t *testing.T) {
	_, err := NewJWTVerifier([]byte("short"))
	require.Error(t, err)

	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestJWTVerifier_Verify(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueToken(testSecret, "ops-cli", RoleServiceRole, time.Minute)
		require.NoError(t, err)

		principal, err := v.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "ops-cli", principal.Subject)
		require.Equal(t, RoleServiceRole, principal.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(testSecret, "ops-cli", RoleServiceRole, -time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken([]byte("another-secret-another-secret-xx"), "ops-cli", RoleServiceRole, time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("missing role", func(t *testing.T) {
		token, err := IssueToken(testSecret, "ops-cli", "", time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorContains(t, err, "missing role")
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleServiceRole})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(signed)
		require.Error(t, err)
	})
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	_, err := IssueToken(nil, "x", RoleServiceRole, time.Minute)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)

	handler := v.Middleware()(RequirePermission(PermProvisionAdmins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, PrincipalFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})))

	serviceToken, err := IssueToken(testSecret, "svc", RoleServiceRole, time.Minute)
	require.NoError(t, err)
	anonToken, err := IssueToken(testSecret, "web", RoleAnon, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "insufficient role", header: "Bearer " + anonToken, want: http.StatusForbidden},
		{name: "service role", header: "Bearer " + serviceToken, want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + serviceToken, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/create-super-admin", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			handler.ServeHTTP(w, r)
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHasPermission(t *testing.T) {
	require.True(t, HasPermission(RoleSuperAdmin, PermReviewRegistrations))
	require.True(t, HasPermission(RoleAnon, PermSubmitRegistrations))
	require.False(t, HasPermission(RoleAnon, PermProvisionAdmins))
	require.False(t, HasPermission("owner", PermSubmitRegistrations))
}
