package ui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	dark "github.com/thiagokokada/dark-mode-go"
)

// osThemeMsg reports an OS appearance change.
type osThemeMsg struct{ theme Theme }

// ThemeWatcher follows the OS dark mode setting for theme = "system".
type ThemeWatcher struct {
	changeCh  chan Theme
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewThemeWatcher starts watching. It returns nil when the platform cannot
// report appearance changes; callers keep the theme they started with.
func NewThemeWatcher(parent context.Context) *ThemeWatcher {
	ctx, cancel := context.WithCancel(parent)

	events, errs, err := dark.WatchDarkMode(ctx)
	if err != nil {
		cancel()
		uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}

	tw := &ThemeWatcher{
		changeCh: make(chan Theme, 1),
		closeCh:  make(chan struct{}),
	}
	go tw.loop(cancel, events, errs)
	return tw
}

func (tw *ThemeWatcher) loop(cancel context.CancelFunc, events <-chan bool, errs <-chan error) {
	defer cancel()
	for {
		select {
		case <-tw.closeCh:
			return
		case isDark, ok := <-events:
			if !ok {
				return
			}
			t := ThemeLight
			if isDark {
				t = ThemeDark
			}
			// latest wins
			select {
			case tw.changeCh <- t:
			default:
				select {
				case <-tw.changeCh:
				default:
				}
				tw.changeCh <- t
			}
		case err, ok := <-errs:
			if ok && err != nil {
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// Listen waits for the next change. Re-issue it after each osThemeMsg.
func (tw *ThemeWatcher) Listen() tea.Cmd {
	if tw == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case t := <-tw.changeCh:
			return osThemeMsg{theme: t}
		case <-tw.closeCh:
			return nil
		}
	}
}

// Close stops the watcher goroutine. Safe to call multiple times.
func (tw *ThemeWatcher) Close() {
	if tw == nil {
		return
	}
	tw.closeOnce.Do(func() { close(tw.closeCh) })
}
