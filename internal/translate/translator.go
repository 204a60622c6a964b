package translate

import (
	"context"
	"strings"
	"sync"
)

// Translator converts text into the target language. Source language
// detection is left to the implementation.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// HealthChecker is implemented by translators that can verify connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text, target string) (string, error)

// Translate calls f.
func (f Func) Translate(ctx context.Context, text, target string) (string, error) {
	return f(ctx, text, target)
}

// Identity returns text unchanged.
type Identity struct{}

// Translate returns text unchanged.
func (Identity) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// Memo caches translations per (text, target) pair. Errors are not cached.
type Memo struct {
	next Translator

	mu      sync.Mutex
	entries map[memoKey]string
}

type memoKey struct {
	text   string
	target string
}

// NewMemo wraps next with a cache.
func NewMemo(next Translator) *Memo {
	return &Memo{next: next, entries: make(map[memoKey]string)}
}

// Translate returns the cached result or delegates to the wrapped translator.
func (m *Memo) Translate(ctx context.Context, text, target string) (string, error) {
	key := memoKey{text: strings.TrimSpace(text), target: strings.ToLower(strings.TrimSpace(target))}
	m.mu.Lock()
	if cached, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	translated, err := m.next.Translate(ctx, text, target)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.entries[key] = translated
	m.mu.Unlock()
	return translated, nil
}

// HealthCheck delegates to the wrapped translator when it supports it.
func (m *Memo) HealthCheck(ctx context.Context) error {
	if checker, ok := m.next.(HealthChecker); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}

// Lazy builds its translator on first use, so a misconfigured provider only
// fails runs that actually translate.
type Lazy struct {
	build func() (Translator, error)

	once sync.Once
	next Translator
	err  error
}

// NewLazy wraps build.
func NewLazy(build func() (Translator, error)) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) resolve() (Translator, error) {
	l.once.Do(func() {
		l.next, l.err = l.build()
	})
	return l.next, l.err
}

// Translate builds the translator if needed and delegates to it.
func (l *Lazy) Translate(ctx context.Context, text, target string) (string, error) {
	next, err := l.resolve()
	if err != nil {
		return "", err
	}
	return next.Translate(ctx, text, target)
}

// HealthCheck builds the translator if needed and delegates when supported.
func (l *Lazy) HealthCheck(ctx context.Context) error {
	next, err := l.resolve()
	if err != nil {
		return err
	}
	if checker, ok := next.(HealthChecker); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}
