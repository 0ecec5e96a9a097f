package encounter

import (
	"fmt"
	"sync"

	"github.com/livp123/raidrec/internal/combatlog"
	"github.com/livp123/raidrec/internal/config"
)

// policy decides whether a session is recorded. The compiled filter is
// cached until the expression changes.
type policy struct {
	mu     sync.Mutex
	ready  bool
	source string
	filter *combatlog.Filter
	err    error
}

// decide returns whether s should be recorded, and why not.
func (p *policy) decide(cfg *config.Config, s *Session) (bool, string) {
	switch s.Kind {
	case KindDungeon:
		if !cfg.Difficulties.RecordMPlus {
			return false, "Mythic+ recording disabled"
		}
	default:
		if !cfg.DifficultyEnabled(s.DifficultyID) {
			return false, fmt.Sprintf("%s difficulty disabled", s.Difficulty)
		}
	}

	f, err := p.compiled(cfg.General.Filter)
	if err != nil {
		return false, err.Error()
	}
	ok, err := f.Match(s.FilterEnv())
	if err != nil {
		return false, err.Error()
	}
	if !ok {
		return false, "excluded by filter " + f.String()
	}
	return true, ""
}

func (p *policy) compiled(source string) (*combatlog.Filter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready || source != p.source {
		p.ready = true
		p.source = source
		p.filter, p.err = combatlog.CompileFilter(source)
	}
	return p.filter, p.err
}
