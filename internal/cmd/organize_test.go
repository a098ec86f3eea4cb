package cmd

import (
	"testing"

	"github.com/runger/dorg/internal/config"
	"github.com/runger/dorg/internal/feedback"
	"github.com/stretchr/testify/assert"
)

func TestApplyOrganizeFlags(t *testing.T) {
	organizeMaxAttempts = 5
	organizeModel = "claude-sonnet"
	organizeLogPath = "/tmp/log.csv"
	organizeDataHome = "/srv/data"
	t.Cleanup(func() {
		organizeMaxAttempts = 0
		organizeModel = ""
		organizeLogPath = ""
		organizeDataHome = ""
	})

	cfg := config.DefaultConfig()
	applyOrganizeFlags(cfg)

	assert.Equal(t, 5, cfg.Naming.MaxAttempts)
	assert.Equal(t, "claude-sonnet", cfg.Naming.Model)
	assert.Equal(t, "/tmp/log.csv", cfg.Log.Path)
	assert.Equal(t, "/srv/data", cfg.DataHome)
}

func TestClassifierFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	// No configured rules: built-in table.
	clf := classifierFromConfig(cfg)
	assert.Equal(t,
		[]feedback.Category{feedback.CategorySpecificity},
		clf.Classify("too generic"))

	cfg.Feedback.Rules = []config.FeedbackRule{
		{Category: "tone", Keywords: []string{"boring"}},
	}
	clf = classifierFromConfig(cfg)
	assert.Equal(t, []feedback.Category{feedback.Category("tone")}, clf.Classify("boring name"))
	// Built-in keywords no longer apply once rules are overridden.
	assert.Equal(t, []feedback.Category{feedback.CategoryOther}, clf.Classify("too generic"))
}
