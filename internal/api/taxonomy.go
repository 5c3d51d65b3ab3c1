package api

import "net/http"

// invalidTaxonomyOrder is the message reported for unknown taxonomy order
// tokens. The wording and the server-class status code are kept for
// compatibility with existing API consumers, even though the failure is a
// caller mistake.
const invalidTaxonomyOrder = "Invalid orderby. Options are name and count."

// ResolveTaxonomyOrder maps the client-facing order token of a taxonomy
// values request to the store-level sort expression. Unknown tokens are
// rejected, never silently replaced.
func ResolveTaxonomyOrder(token string) (string, error) {
	switch token {
	case "name":
		return "name", nil
	case "count":
		return "results", nil
	case "-count", "-results":
		return "results DESC", nil
	default:
		return "", &Error{
			Type:    "InvalidArgumentException",
			Message: invalidTaxonomyOrder,
			Code:    http.StatusInternalServerError,
		}
	}
}
