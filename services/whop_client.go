package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// WhopClient talks to the Whop platform API for reward fulfillment and
// member profile lookups. Implements Fulfillment.
type WhopClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewWhopClient(baseURL, apiKey string) *WhopClient {
	return &WhopClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// UnlockProduct grants a member access to a product.
func (c *WhopClient) UnlockProduct(whopUserID, whopCompanyID, productID string) error {
	url := fmt.Sprintf("%s/v5/company/products/%s/access", c.BaseURL, productID)

	reqBody := map[string]interface{}{
		"user_id":    whopUserID,
		"company_id": whopCompanyID,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("WhopAPI product unlock returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("product unlock failed: %d", resp.StatusCode)
	}

	return nil
}

type discountResponse struct {
	Code string `json:"code"`
}

// CreateDiscountCode creates a one-off promo code and returns it.
func (c *WhopClient) CreateDiscountCode(whopCompanyID string, percentage int, whopUserID string) (string, error) {
	url := fmt.Sprintf("%s/v5/company/promo_codes", c.BaseURL)

	reqBody := map[string]interface{}{
		"company_id":          whopCompanyID,
		"amount_off":          percentage,
		"promo_type":          "percentage",
		"number_of_intervals": 1,
		"user_id":             whopUserID,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("WhopAPI promo_codes returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("discount code creation failed: %d", resp.StatusCode)
	}

	var out discountResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}

	return out.Code, nil
}

// WhopProfile is the slice of a member profile the sync worker mirrors.
type WhopProfile struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_pic_url,omitempty"`
}

// GetUserProfile fetches a member's public profile.
func (c *WhopClient) GetUserProfile(whopUserID string) (*WhopProfile, error) {
	url := fmt.Sprintf("%s/v5/company/users/%s", c.BaseURL, whopUserID)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("WhopAPI user profile returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("profile fetch failed: %d", resp.StatusCode)
	}

	var out WhopProfile
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
