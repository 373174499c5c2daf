package category

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"ragkb/internal/domain"
)

// Sentinel answers for the degradation paths. Detect never returns an error;
// each failure mode gets its own value so logs and callers can tell them apart.
const (
	UnknownNoCategories    = "unknown (no categories defined)"
	UnknownNoJSON          = "unknown (no json in model output)"
	UnknownInvalidCategory = "unknown (category not in list)"
	UnknownDetectionError  = "unknown (detection failed)"
)

// ChatClient is the generation capability the detector needs.
type ChatClient interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Generation output often wraps the JSON in prose, so take the first
// brace-delimited object lazily instead of parsing the whole response.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*?\}`)

// Detector classifies a query into one of the stored category names using a
// constrained JSON-producing prompt.
type Detector struct {
	store  domain.Store
	client ChatClient
	logger *zap.Logger
}

func NewDetector(store domain.Store, client ChatClient, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{store: store, client: client, logger: logger}
}

// Detect returns the name of the category best matching the query, or one of
// the Unknown* sentinels. When no categories exist the generation capability
// is not called at all.
func (d *Detector) Detect(ctx context.Context, query string) string {
	names, err := d.store.ListCategoryNames(ctx)
	if err != nil {
		d.logger.Error("listing categories failed", zap.Error(err))
		return UnknownDetectionError
	}
	if len(names) == 0 {
		return UnknownNoCategories
	}

	raw, err := d.client.Chat(ctx, detectionPrompt(query, names))
	if err != nil {
		d.logger.Warn("category detection call failed", zap.Error(err))
		return UnknownDetectionError
	}

	match := jsonObjectRe.FindString(raw)
	if match == "" {
		d.logger.Warn("no json object in detection response", zap.String("response", raw))
		return UnknownNoJSON
	}
	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		d.logger.Warn("detection response json invalid", zap.Error(err))
		return UnknownNoJSON
	}
	for _, name := range names {
		if name == parsed.Category {
			return name
		}
	}
	d.logger.Warn("model picked a category outside the list",
		zap.String("picked", parsed.Category))
	return UnknownInvalidCategory
}

func detectionPrompt(query string, names []string) string {
	return fmt.Sprintf(`You are a classifier. Assign the question below to exactly one of these categories:
%s

Question: %s

Respond with strict JSON only, in the form {"category": "<name>"}.
Choose only from the listed categories. If unsure, still pick the closest one.`,
		"- "+strings.Join(names, "\n- "), query)
}
