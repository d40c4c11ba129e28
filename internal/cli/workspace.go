package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/infra/dfcli"
	"github.com/aalvaropc/dfkit/internal/infra/endpoints"
	"github.com/aalvaropc/dfkit/internal/infra/ledger"
	"github.com/aalvaropc/dfkit/internal/infra/logger"
	"github.com/aalvaropc/dfkit/internal/infra/metafile"
	"github.com/aalvaropc/dfkit/internal/infra/runstore"
	"github.com/aalvaropc/dfkit/internal/infra/workspacefinder"
	"github.com/aalvaropc/dfkit/internal/ports"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

// workspaceCtx holds the adapters and use cases one command needs.
// root is empty when the command runs outside a workspace on defaults.
type workspaceCtx struct {
	root string
	cfg  domain.Config

	client      ports.Client
	session     *usecase.Session
	records     *usecase.Records
	transfers   *usecase.Transfers
	collections *usecase.Collections

	ledger ports.Ledger
	store  ports.ArtifactStore
}

// loadWorkspace builds the command context. With required set, a missing
// workspace is an error; otherwise DataFed commands fall back to defaults.
func loadWorkspace(workspaceFlag string, required bool) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	switch {
	case err == nil:
	case !required && domain.IsKind(err, domain.KindNotFound) && strings.TrimSpace(workspaceFlag) == "":
		root = ""
	default:
		return nil, err
	}

	cfg := domain.DefaultConfig()
	if root != "" {
		cfg, err = workspacefinder.LoadConfig(root)
		if err != nil {
			return nil, err
		}
	}

	log := logger.L()
	client := dfcli.New(dfcli.ConfigFrom(cfg.Client), dfcli.WithLogger(log))
	session := usecase.NewSession(client, endpoints.NewResolver(cfg.Endpoints), log)

	ws := &workspaceCtx{
		root:        root,
		cfg:         cfg,
		client:      client,
		session:     session,
		records:     usecase.NewRecords(client, metafile.NewSource(), log),
		transfers:   usecase.NewTransfers(client, session, log),
		collections: usecase.NewCollections(client, log),
	}
	if root != "" {
		ws.store = runstore.NewJSONStore(root, cfg, runstore.WithIndex(true))
	}
	return ws, nil
}

// openLedger opens the push ledger of the workspace. Outside a workspace
// there is no ledger and remote existence checks are the only guard.
func (w *workspaceCtx) openLedger() error {
	if w.root == "" || w.ledger != nil {
		return nil
	}
	path := w.cfg.Paths.Ledger
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.root, path)
	}
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	w.ledger = l
	return nil
}

func (w *workspaceCtx) ingest() *usecase.Ingest {
	return usecase.NewIngest(usecase.IngestDeps{
		Records:   w.records,
		Transfers: w.transfers,
		Metadata:  metafile.NewSource(),
		Ledger:    w.ledger,
		Config:    w.cfg,
		Logger:    logger.L(),
	})
}

func (w *workspaceCtx) Close() error {
	if w.ledger == nil {
		return nil
	}
	err := w.ledger.Close()
	w.ledger = nil
	return err
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", &domain.OpError{
				Op:   "cli.workspace",
				Kind: domain.KindInvalidArgument,
				Path: w,
				Err:  fmt.Errorf("invalid workspace path: %w", err),
			}
		}
		if !fileExists(filepath.Join(abs, workspacefinder.ConfigFile)) {
			return "", &domain.OpError{
				Op:   "workspacefinder.findroot",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  domain.ErrNotFound,
			}
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", &domain.OpError{Op: "cli.workspace", Kind: domain.KindExecution, Err: err}
	}
	return workspacefinder.NewFinder().FindRoot(wd)
}

// resolveDataPath makes relative paths absolute against the working directory.
func resolveDataPath(p string) (string, error) {
	in := strings.TrimSpace(p)
	if in == "" {
		return "", &domain.OpError{
			Op:   "cli.path",
			Kind: domain.KindInvalidArgument,
			Err:  errors.New("path must not be empty"),
		}
	}
	abs, err := filepath.Abs(in)
	if err != nil {
		return "", &domain.OpError{Op: "cli.path", Kind: domain.KindInvalidArgument, Path: in, Err: err}
	}
	return filepath.Clean(abs), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
