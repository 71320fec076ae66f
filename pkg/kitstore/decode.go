package kitstore

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/brandkit/pkg/brand"
)

// decodeKit parses stored kit JSON leniently: invalid records are dropped
// with a warning rather than failing the whole kit.
func decodeKit(logger *log.Logger, userID string, data []byte) (*brand.Config, error) {
	cfg, dropped, err := brand.Decode(data)
	if err != nil {
		return nil, err
	}
	for _, d := range dropped {
		logger.Warn("dropped invalid kit element", "user", userID, "id", d.ID, "reason", d.Reason)
	}
	return cfg, nil
}

// kitFromDocument rebuilds a kit from a stored document's element list,
// dropping invalid records with a warning, same as the JSON path.
func kitFromDocument(logger *log.Logger, userID string, elements []*brand.Element) *brand.Config {
	cfg := brand.NewConfig()
	for i, el := range elements {
		if el == nil {
			logger.Warn("dropped invalid kit element", "user", userID, "index", i, "reason", "missing record")
			continue
		}
		if err := el.Validate(); err != nil {
			logger.Warn("dropped invalid kit element", "user", userID, "id", el.ID, "reason", err.Error())
			continue
		}
		if err := cfg.Add(el); err != nil {
			logger.Warn("dropped invalid kit element", "user", userID, "id", el.ID, "reason", err.Error())
		}
	}
	return cfg
}
