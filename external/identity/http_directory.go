package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/shussekin/internal/identity"
)

const directoryRequestTimeout = 5 * time.Second

type HTTPDirectory struct {
	apiURL string
	client *http.Client
}

func NewHTTPDirectory(apiURL string) identity.Directory {
	return &HTTPDirectory{
		apiURL: apiURL,
		client: &http.Client{Timeout: directoryRequestTimeout},
	}
}

type userListResponse struct {
	Objects []struct {
		ID               string `json:"id"`
		RegistrationInfo string `json:"registrationInfo"`
	} `json:"objects"`
}

func (d *HTTPDirectory) GetProfiles(ctx context.Context, sessionKey string, ids []string) (map[string]identity.Profile, error) {
	profiles := make(map[string]identity.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	form := url.Values{}
	form.Set("format", "1")
	form.Set("ks", sessionKey)
	form.Set("service", "user")
	form.Set("action", "list")
	form.Set("filter:objectType", "KalturaUserFilter")
	form.Set("filter:idIn", strings.Join(ids, ","))
	form.Set("pager:pageSize", strconv.Itoa(len(ids)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity api returned status %d", resp.StatusCode)
	}

	var parsed userListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("identity response is not valid JSON: %w", err)
	}

	// Entries without an id or registration blob exist upstream but carry
	// nothing joinable; they are left out of the result like unknown ids.
	for _, obj := range parsed.Objects {
		if obj.ID == "" || obj.RegistrationInfo == "" {
			continue
		}
		var p identity.Profile
		if err := json.Unmarshal([]byte(obj.RegistrationInfo), &p); err != nil {
			continue
		}
		p.ID = obj.ID
		profiles[obj.ID] = p
	}
	return profiles, nil
}
