package project

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructural marks a snapshot that cannot be compiled at all.
var ErrStructural = errors.New("structural error")

// Validate checks the rules that make compilation impossible when broken.
// Data-quality gaps such as dangling transitions are not reported here.
func Validate(p *Project) error {
	if p == nil {
		return fmt.Errorf("%w: project is nil", ErrStructural)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrStructural)
	}
	if len(p.Graph.Messages) == 0 && len(p.Intents) > 0 {
		return fmt.Errorf("%w: graph has no messages but %d intents are defined", ErrStructural, len(p.Intents))
	}

	seen := make(map[string]struct{}, len(p.Graph.Messages))
	for i, m := range p.Graph.Messages {
		if m.ID == "" {
			return fmt.Errorf("%w: message at position %d has no id", ErrStructural, i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("%w: duplicate message id %q", ErrStructural, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}
