package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  bot_name: Ava
  company_name: Acme Corp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultAvailableMessageTokens, cfg.Budgets.AvailableMessageTokens)
	assert.Equal(t, DefaultModuleTokenBudget, cfg.Budgets.ModuleTokenBudget)
	assert.Equal(t, ClassifierKeyword, cfg.Classifier.Provider)
	assert.Equal(t, "Ava", cfg.Bot.BotName)
	assert.Equal(t, "Acme Corp", cfg.Bot.CompanyName)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
model: gpt-4o-mini
budgets:
  available_message_tokens: 1500
  module_token_budget: 800
classifier:
  provider: keyword
storage:
  knowledge_db_path: /tmp/kb.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 1500, cfg.Budgets.AvailableMessageTokens)
	assert.Equal(t, 800, cfg.Budgets.ModuleTokenBudget)
	assert.Equal(t, "/tmp/kb.db", cfg.Storage.KnowledgeDBPath)
	assert.Empty(t, cfg.Storage.SessionDBPath)
}

func TestLoadRejectsUnknownClassifier(t *testing.T) {
	path := writeConfig(t, `
classifier:
  provider: cohere
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown classifier provider")
}

func TestLoadRejectsNegativeBudget(t *testing.T) {
	path := writeConfig(t, `
budgets:
  module_token_budget: -10
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module_token_budget")
}

func TestLoadLLMClassifierRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := writeConfig(t, `
classifier:
  provider: openai
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an API key")
}

func TestClassifierAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	path := writeConfig(t, `
classifier:
  provider: anthropic
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Classifier.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ClassifierKeyword, cfg.Classifier.Provider)
}
