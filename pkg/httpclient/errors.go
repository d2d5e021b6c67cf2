package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// maxErrorBody caps how much of a failed response body is read.
const maxErrorBody = 1 << 20

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an *apperrors.AppError carrying the status and the server-provided
// message. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	code, message := ExtractError(body)
	return apperrors.HTTP(resp.StatusCode, code, message)
}

// ExtractError pulls an error code and message out of a failure body. The API
// has answered with several envelope shapes over time; the message is taken
// from the first non-empty of:
//
//	message, error.message, error (string), msg
//
// and the code from error.code, then code. Non-JSON bodies yield their trimmed
// text as the message when it is short enough to be meant for humans.
func ExtractError(body []byte) (code, message string) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 0 && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			return "", text
		}
		return "", ""
	}

	nested, _ := doc["error"].(map[string]any)

	message = firstString(doc["message"], nested["message"], doc["error"], doc["msg"])
	code = firstString(nested["code"], doc["code"])
	return code, message
}

func firstString(values ...any) string {
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
