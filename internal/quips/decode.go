package quips

import (
	"fmt"
	"strings"

	"github.com/titanous/json5"

	"github.com/Clark-Hu/filmfeud/internal/compare"
)

type errorReply struct {
	Error any             `json:"error"`
	Quips []compare.Quip `json:"quips"`
}

// decodeQuips reads model output. Models tend to wrap JSON in markdown
// fences and leave trailing commas, so the body is parsed as JSON5.
func decodeQuips(content string) ([]compare.Quip, error) {
	body := stripFence(content)
	if body == "" {
		return nil, fmt.Errorf("%w: empty content", ErrGenerationFailed)
	}

	if strings.HasPrefix(body, "[") {
		var quips []compare.Quip
		if err := json5.Unmarshal([]byte(body), &quips); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		return quips, nil
	}

	var reply errorReply
	if err := json5.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, reply.Error)
	}
	if reply.Quips == nil {
		return nil, fmt.Errorf("%w: no quip list in reply", ErrGenerationFailed)
	}
	return reply.Quips, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
