package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=5000"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	GinMode           string        `env:"GIN_MODE,default=release"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	UnreadMode        string        `env:"UNREAD_MODE,default=shared"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CensoredWordsDir  string        `env:"CENSORED_WORDS_DIR"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	TxnRetries        int           `env:"TXN_RETRIES,default=5"`
	SearchLimit       int           `env:"SEARCH_LIMIT,default=20"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	DebugPort         int           `env:"DEBUG_PORT,default=8081"`
	RebuildOnStart    bool          `env:"REBUILD_ON_START,default=false"`
	GraphAuditEvery   time.Duration `env:"GRAPH_AUDIT_INTERVAL,default=0s"`
	GraphAuditRepair  bool          `env:"GRAPH_AUDIT_REPAIR,default=false"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CensoredWordList splits the comma separated CENSORED_WORDS variable.
func (c Config) CensoredWordList() []string {
	words := lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	})
	return lo.Compact(words)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
