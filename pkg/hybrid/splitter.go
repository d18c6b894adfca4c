package hybrid

import "strings"

// Sentinel separates the conversational reply from the embedded resume text
// in a worker result. It must match the worker byte for byte.
const Sentinel = "###$$$简历文本$$$###："

// Split separates a raw worker payload into the reply shown to the user and
// the document text carried into the session context.
//
// A payload without the sentinel is treated as a plain reply. Only the first
// occurrence of the sentinel is significant.
func Split(raw string) (reply, document string) {
	if raw == "" {
		return "", ""
	}

	idx := strings.Index(raw, Sentinel)
	if idx == -1 {
		return strings.TrimSpace(raw), ""
	}

	reply = strings.TrimSpace(raw[:idx])
	document = strings.TrimSpace(raw[idx+len(Sentinel):])
	return reply, document
}

// Join builds a hybrid payload. An empty document yields the bare reply so
// the result stays readable by clients that never split.
func Join(reply, document string) string {
	if document == "" {
		return reply
	}
	return reply + Sentinel + document
}
