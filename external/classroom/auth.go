package classroom

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/shussekin/internal/classroom"
)

const loginPath = "backend/api/auth/login"

// LTITokenSource obtains a bearer token from the login endpoint, which
// authenticates an empty POST via an OAuth 1.0a HMAC-SHA1 authorization
// header built from the LTI key/secret pair. The token is fetched once and
// reused for the rest of the run.
type LTITokenSource struct {
	baseURL   string
	ltiKey    string
	ltiSecret string
	client    *http.Client

	mu    sync.Mutex
	token string
}

func NewLTITokenSource(baseURL, ltiKey, ltiSecret string) classroom.TokenSource {
	return &LTITokenSource{
		baseURL:   strings.TrimSuffix(baseURL, "/") + "/",
		ltiKey:    ltiKey,
		ltiSecret: ltiSecret,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

func (s *LTITokenSource) BearerToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}

	endpoint := s.baseURL + loginPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	authHeader, err := s.authorizationHeader(http.MethodPost, endpoint)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("login response is not valid JSON: %w", err)
	}
	if envelope.Status != "success" || envelope.Data.Token == "" {
		return "", fmt.Errorf("login returned status %q without a token", envelope.Status)
	}

	s.token = envelope.Data.Token
	return s.token, nil
}

func (s *LTITokenSource) authorizationHeader(method, endpoint string) (string, error) {
	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.ltiKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", time.Now().Unix()),
		"oauth_version":          "1.0",
	}
	oauthParams["oauth_signature"] = signBaseString(baseString(method, endpoint, oauthParams), s.ltiSecret)

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, percentEncode(oauthParams[k])))
	}
	return "OAuth " + strings.Join(parts, ", "), nil
}

func baseString(method, endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params[k]))
	}
	return strings.Join([]string{
		method,
		percentEncode(endpoint),
		percentEncode(strings.Join(pairs, "&")),
	}, "&")
}

func signBaseString(base, secret string) string {
	mac := hmac.New(sha1.New, []byte(percentEncode(secret)+"&"))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode implements RFC 3986 encoding as OAuth 1.0a requires, which
// differs from url.QueryEscape for spaces and tildes.
func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

func randomNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
