package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/shussekin/internal/identity"
)

const sessionKeyTTL = 12 * time.Hour

// AdminKeyGenerator builds a v2 admin session key: a signed field payload
// encrypted with AES-128-CBC under the first half of SHA-1(secret), wrapped
// in a "v2|partnerId|" header and URL-safe base64.
type AdminKeyGenerator struct {
	partnerID string
	secret    string
	now       func() time.Time
}

func NewAdminKeyGenerator(partnerID, secret string) identity.SessionKeySource {
	return &AdminKeyGenerator{partnerID: partnerID, secret: secret, now: time.Now}
}

func (g *AdminKeyGenerator) SessionKey() (string, error) {
	expiry := g.now().Add(sessionKeyTTL).Unix()
	fields := fmt.Sprintf("_e=%d&_t=2&_u=admin", expiry)

	rnd := make([]byte, 16)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	payload := append(rnd, []byte(fields)...)
	digest := sha1.Sum(payload)
	message := append(digest[:], payload...)
	if rem := len(message) % aes.BlockSize; rem != 0 {
		message = append(message, make([]byte, aes.BlockSize-rem)...)
	}

	keyDigest := sha1.Sum([]byte(g.secret))
	block, err := aes.NewCipher(keyDigest[:16])
	if err != nil {
		return "", err
	}
	ciphertext := make([]byte, len(message))
	iv := make([]byte, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, message)

	header := "v2|" + g.partnerID + "|"
	encoded := base64.StdEncoding.EncodeToString(append([]byte(header), ciphertext...))
	encoded = strings.ReplaceAll(encoded, "+", "-")
	encoded = strings.ReplaceAll(encoded, "/", "_")
	return encoded, nil
}
