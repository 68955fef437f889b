package gemini

import "strings"

// extractor pulls text out of a reply, or reports that its field is absent.
type extractor func(*Response) (string, bool)

// extractors are tried in order; the first non-blank answer wins.
var extractors = []extractor{
	directText,
	outputText,
	candidateParts,
}

func extractText(resp *Response) string {
	if resp == nil {
		return ""
	}
	for _, ex := range extractors {
		if s, ok := ex(resp); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func directText(r *Response) (string, bool) { return r.Text, r.Text != "" }

func outputText(r *Response) (string, bool) { return r.OutputText, r.OutputText != "" }

// candidateParts joins the non-blank parts of every candidate that was not
// suppressed by the service.
func candidateParts(r *Response) (string, bool) {
	var parts []string
	for _, c := range r.Candidates {
		if c.FinishReason == FinishSafety {
			continue
		}
		for _, p := range c.Parts {
			if strings.TrimSpace(p) != "" {
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), true
}

// firstFinishReason is reported in empty-reply errors.
func firstFinishReason(r *Response) string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].FinishReason.String()
}
