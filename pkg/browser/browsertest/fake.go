// Package browsertest provides a scripted browser.Automation for tests.
package browsertest

import (
	"context"
	"strings"
	"sync"

	"github.com/bher20/tagihanpln/pkg/browser"
)

// Automation hands out Session on every NewSession call.
type Automation struct {
	Session     *Session
	StartErr    error
	Unavailable bool
}

func (a *Automation) NewSession(ctx context.Context) (browser.Session, error) {
	if a.StartErr != nil {
		return nil, a.StartErr
	}
	return a.Session, nil
}

func (a *Automation) Available() bool { return !a.Unavailable }

// Session records the calls made on it and replays canned behaviour.
type Session struct {
	// Responses maps a watched URL part to bodies delivered after Navigate
	// (Initial) or after a successful ClickButton (AfterClick).
	Initial    map[string][]byte
	AfterClick map[string][]byte

	HTML        string
	NavigateErr error
	FillErr     error
	Buttons     []string

	mu        sync.Mutex
	watches   map[string]chan []byte
	Filled    string
	Clicked   []string
	Enter     int
	Closed    int
	Navigated []string
}

func (s *Session) Watch(urlPart string) <-chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watches == nil {
		s.watches = make(map[string]chan []byte)
	}
	ch := make(chan []byte, 4)
	s.watches[urlPart] = ch
	return ch
}

func (s *Session) deliver(bodies map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for part, body := range bodies {
		if ch, ok := s.watches[part]; ok {
			ch <- body
		}
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.Navigated = append(s.Navigated, url)
	s.mu.Unlock()
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.deliver(s.Initial)
	return nil
}

func (s *Session) FillInput(ctx context.Context, keywords []string, value string) error {
	if s.FillErr != nil {
		return s.FillErr
	}
	s.mu.Lock()
	s.Filled = value
	s.mu.Unlock()
	return nil
}

func (s *Session) ClickButton(ctx context.Context, keywords []string) (bool, error) {
	for _, b := range s.Buttons {
		for _, k := range keywords {
			if strings.Contains(strings.ToLower(b), strings.ToLower(k)) {
				s.mu.Lock()
				s.Clicked = append(s.Clicked, b)
				s.mu.Unlock()
				s.deliver(s.AfterClick)
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Session) PressEnter(ctx context.Context) error {
	s.mu.Lock()
	s.Enter++
	s.mu.Unlock()
	return nil
}

func (s *Session) Content(ctx context.Context) (string, error) {
	return s.HTML, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.Closed++
	s.mu.Unlock()
	return nil
}
