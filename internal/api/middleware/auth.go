package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// nonceWindow bounds how long an issued chat nonce stays valid. The current
// and previous window are accepted so a token never expires mid-session
// right after issuance.
const nonceWindow = 12 * time.Hour

// ChatNonce returns the CSRF token chat clients must echo back.
func ChatNonce(secret string, now time.Time) string {
	return nonceForWindow(secret, now.Unix()/int64(nonceWindow.Seconds()))
}

func nonceForWindow(secret string, window int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "chat|%d", window)
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

func validNonce(secret, token string, now time.Time) bool {
	window := now.Unix() / int64(nonceWindow.Seconds())
	for _, w := range []int64{window, window - 1} {
		if hmac.Equal([]byte(token), []byte(nonceForWindow(secret, w))) {
			return true
		}
	}
	return false
}

// RequireNonce rejects chat requests without a valid nonce, from the header
// or a form field.
func RequireNonce(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Chat-Nonce")
		if token == "" {
			token = c.PostForm("nonce")
		}
		if token == "" || !validNonce(secret, token, time.Now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid nonce",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin guards the sync endpoints with a bearer token. An empty
// configured token disables the admin surface entirely.
func RequireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		provided, _ := strings.CutPrefix(auth, "Bearer ")
		if token == "" || provided == "" || !hmac.Equal([]byte(provided), []byte(token)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}
