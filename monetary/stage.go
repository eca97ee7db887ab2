package monetary

import (
	"encoding/json"
	"fmt"

	"github.com/etnz/cadobr"
)

// Enrich values the liens of a normalized document and returns the document
// with its valuations. Documents other than property deeds are returned unchanged.
func (e *Engine) Enrich(raw []byte, folder string) ([]byte, Report, error) {
	doc, _, err := cadobr.Decode(raw, folder)
	if err != nil {
		return nil, nil, err
	}
	deed, ok := doc.(*cadobr.PropertyDeed)
	if !ok {
		return raw, nil, nil
	}
	report := e.ApplyDeed(deed)
	out, err := json.Marshal(deed)
	if err != nil {
		return nil, nil, fmt.Errorf("could not encode valued document: %w", err)
	}
	return out, report, nil
}
