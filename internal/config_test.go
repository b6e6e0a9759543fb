package internal

import (
	"os"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_UnmarshalDefaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("CENSORED_WORDS", " spam, scam ,,")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(5000, config.Port)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.Equal("shared", config.UnreadMode)
	req.Equal([]string{"spam", "scam"}, config.CensoredWordList())
	req.Equal("0.0.0.0:5000", config.Address())
	req.Equal(8081, config.DebugPort)
	req.False(config.RebuildOnStart)
	req.Zero(config.GraphAuditEvery)
	req.Empty(config.CensoredWordsDir)
}

func TestConfig_GraphAudit(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("GRAPH_AUDIT_INTERVAL", "15m")
	t.Setenv("GRAPH_AUDIT_REPAIR", "true")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)
	req.Equal(15*time.Minute, config.GraphAuditEvery)
	req.True(config.GraphAuditRepair)
}

func TestConfig_MissingRequired(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "")
	t.Setenv("JWT_SECRET", "")
	req.NoError(os.Unsetenv("BADGER_FILEPATH"))
	req.NoError(os.Unsetenv("JWT_SECRET"))

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.Error(err)
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)
	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("**")
	req.Error(err)
}
