// Package portal fetches Sofía Plus grading reports.
//
// InboxClient reads reports that the portal export (or an operator) drops into
// an inbox directory and stages them in the output directory under a
// per-fiche name.
package portal

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/MarcosBaez42/automatizacion-sofia/core"
	"github.com/MarcosBaez42/automatizacion-sofia/core/fiche"
)

// ReportBaseName prefixes every staged report.
const ReportBaseName = "Reporte de Juicios Evaluativos"

var (
	ErrInboxNotReady  = errors.New("la carpeta de descargas del portal no está disponible")
	ErrReportNotFound = errors.New("no se encontró el reporte de la ficha en la carpeta de descargas")

	reportExts = map[string]bool{".xlsx": true, ".xlsm": true, ".csv": true}
)

type InboxClient struct {
	inboxDir  string
	outputDir string
	logger    core.Logger
	loggedIn  bool
}

var _ fiche.ReportDownloader = (*InboxClient)(nil)

func NewInboxClient(conf *core.Config, logger core.Logger) *InboxClient {
	return &InboxClient{
		inboxDir:  conf.Portal.InboxDir,
		outputDir: conf.Portal.OutputDir,
		logger:    logger,
	}
}

// Login checks the inbox is readable and creates the output directory.
func (c *InboxClient) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.inboxDir)
	if err != nil {
		return errors.Wrap(ErrInboxNotReady, err.Error())
	}
	if !info.IsDir() {
		return errors.Wrap(ErrInboxNotReady, c.inboxDir+" no es una carpeta")
	}
	if err = os.MkdirAll(c.outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", c.outputDir)
	}
	c.loggedIn = true
	return nil
}

// DownloadReport stages the newest report naming ficheCode and returns its path.
func (c *InboxClient) DownloadReport(ctx context.Context, ficheCode string) (string, error) {
	if !c.loggedIn {
		return "", errors.New("portal session not started")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code := strings.TrimSpace(ficheCode)
	if code == "" {
		return "", fiche.ErrMissingFicheNumber
	}

	src, err := c.newest(code)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(src))
	dst := filepath.Join(c.outputDir, ReportBaseName+" "+code+ext)
	if err = copyFile(src, dst); err != nil {
		return "", errors.Wrapf(err, "copying report %s", filepath.Base(src))
	}
	if c.logger != nil {
		c.logger.Debug("report staged: " + filepath.Base(dst))
	}
	return dst, nil
}

// codePattern matches code as a whole number: 2675432 must not pick up 26754321.
func codePattern(code string) *regexp.Regexp {
	return regexp.MustCompile(`(^|\D)` + regexp.QuoteMeta(code) + `(\D|$)`)
}

func (c *InboxClient) newest(code string) (string, error) {
	entries, err := os.ReadDir(c.inboxDir)
	if err != nil {
		return "", errors.Wrapf(err, "listing %s", c.inboxDir)
	}
	re := codePattern(code)
	sameDir := filepath.Clean(c.inboxDir) == filepath.Clean(c.outputDir)
	var best fs.FileInfo
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if e.IsDir() || strings.HasPrefix(name, "~$") || !reportExts[strings.ToLower(ext)] {
			continue
		}
		// staged copies sit next to the downloads
		if sameDir && strings.HasPrefix(name, ReportBaseName+" ") {
			continue
		}
		if !re.MatchString(strings.TrimSuffix(name, ext)) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed while listing
		}
		if best == nil || info.ModTime().After(best.ModTime()) {
			best = info
		}
	}
	if best == nil {
		return "", errors.Wrap(ErrReportNotFound, code)
	}
	return filepath.Join(c.inboxDir, best.Name()), nil
}

func (c *InboxClient) Close() error {
	c.loggedIn = false
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
