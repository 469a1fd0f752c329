package auth

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credotech/inventory-console/internal/domain"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginStoresUserAndToken(t *testing.T) {
	session := NewSession(0)
	session.Login(domain.User{ID: "u1", Name: "ops"}, "tok-1")

	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "tok-1", session.Token())

	user, ok := session.User()
	require.True(t, ok)
	assert.Equal(t, "ops", user.Name)
}

func TestLogoutPurgesCredentialsAndFiresCallbacks(t *testing.T) {
	session := NewSession(0)
	var fired atomic.Int32
	session.OnLogout(func() { fired.Add(1) })

	session.Login(domain.User{Name: "ops"}, "tok-1")
	session.Logout()

	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Token())
	_, ok := session.User()
	assert.False(t, ok)
	assert.Equal(t, int32(1), fired.Load())

	// Logging out twice does not fire callbacks again
	session.Logout()
	assert.Equal(t, int32(1), fired.Load())
}

func TestInactivityLogsOut(t *testing.T) {
	session := NewSession(20 * time.Millisecond)
	loggedOut := make(chan struct{})
	session.OnLogout(func() { close(loggedOut) })

	session.Login(domain.User{Name: "ops"}, "tok-1")

	select {
	case <-loggedOut:
	case <-time.After(time.Second):
		t.Fatal("inactivity timeout did not fire")
	}
	assert.False(t, session.IsAuthenticated())
}

func TestTouchDefersInactivityLogout(t *testing.T) {
	session := NewSession(60 * time.Millisecond)
	session.Login(domain.User{Name: "ops"}, "tok-1")

	// Keep touching past the original deadline
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		session.Touch()
	}
	assert.True(t, session.IsAuthenticated())

	assert.Eventually(t, func() bool {
		return !session.IsAuthenticated()
	}, time.Second, 5*time.Millisecond)
}

func TestTouchAfterLogoutIsNoop(t *testing.T) {
	session := NewSession(10 * time.Millisecond)
	session.Login(domain.User{Name: "ops"}, "tok-1")
	session.Logout()

	session.Touch()
	time.Sleep(30 * time.Millisecond)
	assert.False(t, session.IsAuthenticated())
}

func TestHandleUnauthorizedPurgesSession(t *testing.T) {
	session := NewSession(0)
	session.Login(domain.User{Name: "ops"}, "tok-1")

	session.HandleUnauthorized()

	assert.False(t, session.IsAuthenticated())
}

func TestTokenExpired(t *testing.T) {
	assert.True(t, TokenExpired(signedToken(t, time.Now().Add(-time.Hour))))
	assert.False(t, TokenExpired(signedToken(t, time.Now().Add(time.Hour))))

	// Garbage and claim-less tokens are left for the server to reject
	assert.False(t, TokenExpired("not-a-jwt"))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	signed, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.False(t, TokenExpired(signed))
}
