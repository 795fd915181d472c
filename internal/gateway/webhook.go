package gateway

import (
	"encoding/json"
	"fmt"
)

func jsonUnmarshal(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	return nil
}

func errMissingCorrelation(provider string) error {
	return fmt.Errorf("%s: %w: missing correlation id", provider, ErrMalformedWebhook)
}
