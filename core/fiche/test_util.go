package fiche

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// DownloaderMock serves reports from a fiche code -> local path map.
type DownloaderMock struct {
	Reports  map[string]string
	Errors   map[string]error
	LoginErr error

	mu         sync.Mutex
	LoggedIn   bool
	Closed     bool
	Downloaded []string
}

var _ ReportDownloader = (*DownloaderMock)(nil)

func (m *DownloaderMock) Login(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoginErr != nil {
		return m.LoginErr
	}
	m.LoggedIn = true
	return nil
}

func (m *DownloaderMock) DownloadReport(_ context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Downloaded = append(m.Downloaded, code)
	if err, ok := m.Errors[code]; ok {
		return "", err
	}
	if path, ok := m.Reports[code]; ok {
		return path, nil
	}
	return "", errors.Errorf("no report for fiche %s", code)
}

func (m *DownloaderMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// NotifierMock records notifications synchronously.
type NotifierMock struct {
	Err error

	mu   sync.Mutex
	Sent []Notification
}

var _ Notifier = (*NotifierMock)(nil)

func (m *NotifierMock) Notify(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, n)
	return nil
}
