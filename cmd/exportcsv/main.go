package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"employee-directory/internal/app"
	"employee-directory/internal/config"
	"employee-directory/internal/directory"
	"employee-directory/internal/domain"
	"employee-directory/internal/export"
	"employee-directory/internal/logger"
	"employee-directory/internal/sftpclient"
)

type options struct {
	configPath string
	outPath    string
	format     string
	query      string
	mode       string
	uploadSFTP bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config_path", "", "optional YAML config, env overrides it")
	flag.StringVar(&o.outPath, "out", "", "output path (default EMPLOYEE-DIRECTORY.<format>)")
	flag.StringVar(&o.format, "format", "csv", "csv, xml or yaml")
	flag.StringVar(&o.query, "q", "", "only export employees matching this query")
	flag.StringVar(&o.mode, "mode", "", "sparse or exhaustive")
	flag.BoolVar(&o.uploadSFTP, "sftp", false, "upload the generated file via SFTP")
	flag.Parse()

	if err := run(o); err != nil {
		stdlog.Fatal(err)
	}
}

func run(o options) error {
	format := strings.ToLower(strings.TrimSpace(o.format))
	write, err := writerFor(format)
	if err != nil {
		return err
	}
	if o.outPath == "" {
		o.outPath = defaultOutPath(format)
	}
	opts := directory.Options{Query: o.query}
	if o.mode != "" {
		mode, ok := directory.ParseMode(o.mode)
		if !ok {
			return fmt.Errorf("invalid -mode %q", o.mode)
		}
		opts.Mode, opts.ModeSet = mode, true
	}

	rootCtx, rootCancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer rootCancel()

	cfg, err := config.New(o.configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer log.Sync()

	r, err := app.NewRefresher(rootCtx, cfg, log)
	if err != nil {
		return err
	}
	res, err := r.Refresh(rootCtx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	view := directory.View(res.Employees, opts)
	if err := write(o.outPath, view.Groups); err != nil {
		return err
	}
	log.Info("export written",
		zap.String("path", o.outPath),
		zap.String("format", format),
		zap.Int("employees", len(view.Matched)),
		zap.Any("fetched", res.Fetched),
	)

	if !o.uploadSFTP {
		return nil
	}
	remoteName := filepath.Base(o.outPath)
	upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
	defer upCancel()

	if err := sftpclient.UploadFile(upCtx, cfg.SFTP, o.outPath, remoteName); err != nil {
		return err
	}
	log.Info("uploaded",
		zap.String("host", cfg.SFTP.Host),
		zap.String("remote", cfg.SFTP.RemoteDir+"/"+remoteName),
	)
	return nil
}

func writerFor(format string) (func(string, []domain.PositionGroup) error, error) {
	switch format {
	case "csv":
		return export.WriteDirectoryCSVFile, nil
	case "xml":
		return export.WriteDirectoryXMLFile, nil
	case "yaml":
		return export.WriteDirectoryYAMLFile, nil
	}
	return nil, fmt.Errorf("unsupported -format %q (csv, xml or yaml)", format)
}

func defaultOutPath(format string) string {
	return "EMPLOYEE-DIRECTORY." + format
}
