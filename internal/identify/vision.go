package identify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/imaging"
	"github.com/dittoscan/ditto/internal/jsonrepair"
	"github.com/dittoscan/ditto/internal/model"
	"github.com/dittoscan/ditto/pkg/anthropic"
)

const (
	minGrade = 0.5
	maxGrade = 10.0
)

// authorityAliases maps spelled-out or lowercase grading company names to
// their standard abbreviations.
var authorityAliases = map[string]string{
	"cgc":                               "CGC",
	"certified guaranty company":        "CGC",
	"cbcs":                              "CBCS",
	"comic book certification service":  "CBCS",
	"pgx":                               "PGX",
	"professional grading experts":      "PGX",
	"psa":                               "PSA",
	"professional sports authenticator": "PSA",
	"bgs":                               "BGS",
	"beckett":                           "BGS",
	"beckett grading services":          "BGS",
	"sgc":                               "SGC",
	"sportscard guaranty":               "SGC",
	"sportscard guaranty corporation":   "SGC",
}

// ReadGrade asks the vision model to read the grading label off the image.
// It never fails an item: any error along the way is logged and an empty
// reading is returned, leaving the text analysis to work from search results
// alone.
func (o *Orchestrator) ReadGrade(ctx context.Context, imagePath string) model.GradeReading {
	log := zap.L().With(zap.String("image", imagePath))

	data, mediaType, err := imaging.EncodeForVision(imagePath, imaging.DefaultMaxDimension)
	if err != nil {
		log.Warn("vision pass skipped, image encoding failed", zap.Error(err))
		return model.GradeReading{}
	}

	resp, err := o.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     o.cfg.VisionModel,
		MaxTokens: 1024,
		Messages: []anthropic.Message{
			{
				Role:    "user",
				Content: VisionInstruction,
				Images:  []anthropic.Image{{MediaType: mediaType, Data: data}},
			},
		},
	})
	if err != nil {
		log.Warn("vision pass failed", zap.Error(err))
		return model.GradeReading{}
	}
	resp.Usage.LogCost(o.cfg.VisionModel, "vision")

	reading := parseGradeReading(resp.Text())
	if reading.Found() {
		log.Info("grading label read",
			zap.Float64p("grade", reading.Grade),
			zap.String("authority", reading.GradingAuthority))
	} else {
		log.Info("no grading label detected")
	}
	return reading
}

// parseGradeReading extracts a GradeReading from the raw model output.
// Unreadable responses or out-of-range values degrade to null fields.
func parseGradeReading(raw string) model.GradeReading {
	obj, err := jsonrepair.Repair(raw)
	if err != nil {
		zap.L().Warn("vision response unparseable", zap.Error(err))
		return model.GradeReading{}
	}

	var reading model.GradeReading
	if g, ok := obj["grade"].(float64); ok {
		if g >= minGrade && g <= maxGrade {
			reading.Grade = &g
		} else {
			zap.L().Warn("vision grade out of range, discarded", zap.Float64("grade", g))
		}
	}
	reading.GradingAuthority = canonicalAuthority(obj["grading_authority"])
	reading.CertificationNumber = stringifyCert(obj["certification_number"])
	if c, ok := obj["label_color"].(string); ok {
		reading.LabelColor = strings.TrimSpace(c)
	}
	return reading
}

// canonicalAuthority normalizes a grading company name to its standard
// abbreviation, falling back to uppercasing unknown names.
func canonicalAuthority(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if abbr, ok := authorityAliases[strings.ToLower(s)]; ok {
		return abbr
	}
	return strings.ToUpper(s)
}

// stringifyCert keeps certification numbers as strings even when the model
// returns them as JSON numbers.
func stringifyCert(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case float64:
		if c == float64(int64(c)) {
			return strconv.FormatInt(int64(c), 10)
		}
		return fmt.Sprintf("%v", c)
	default:
		return ""
	}
}
