// Package app wires the clippings pipeline together and runs it:
// fetch, render, save, then publish or hand off to the editor.
package app

import (
	"fmt"
	"time"

	"clippings/internal/config"
	"clippings/internal/draft"
	"clippings/internal/editor"
	"clippings/internal/logger"
	"clippings/internal/micropub"
	"clippings/internal/models"
	"clippings/internal/raindrop"
	"clippings/internal/renderer"
)

// Source fetches bookmark records for a collection, tag and window.
// Another bookmark service is added by implementing this interface,
// not by touching the pipeline.
type Source interface {
	Fetch(collection, tag string, window raindrop.Window) ([]models.Bookmark, error)
}

// Publisher pushes a post to a blog and returns its canonical URL.
type Publisher interface {
	Publish(post micropub.Post) (string, error)
}

// Ensure the concrete clients satisfy the capability contracts.
var (
	_ Source    = (*raindrop.Client)(nil)
	_ Publisher = (*micropub.Client)(nil)
)

// Options parameterizes a single run.
type Options struct {
	Date    time.Time // target date, local
	Days    int       // trailing days to collect, >= 1
	Publish bool      // publish after regenerating the draft
	NoEdit  bool      // skip the editor after a draft-only run
}

// App holds the collaborators for one run.
type App struct {
	cfg        *config.Config
	log        logger.Logger
	source     Source
	store      *draft.Store
	publisher  Publisher
	openEditor func(string) error
}

// New builds an App with the real Raindrop and Micropub clients.
func New(cfg *config.Config, log logger.Logger) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		source:     raindrop.NewClient(cfg.RaindropAPIBase, cfg.RaindropToken, cfg.HTTPTimeout, log),
		store:      draft.NewStore(cfg.ContentDir),
		publisher:  micropub.NewClient(cfg.MicropubEndpoint, cfg.MicroblogToken, cfg.HTTPTimeout, log),
		openEditor: editor.Open,
	}
}

// NewWithDeps builds an App with injected collaborators.
func NewWithDeps(cfg *config.Config, log logger.Logger, source Source, store *draft.Store, publisher Publisher) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		source:     source,
		store:      store,
		publisher:  publisher,
		openEditor: editor.Open,
	}
}

// Run executes the pipeline sequentially. Every step must finish
// before the next starts; any failure aborts the run.
func (a *App) Run(opts Options) error {
	days := opts.Days
	if days < 1 {
		days = 1
	}

	dateStr := opts.Date.Format("2006-01-02")
	a.log.Infof("Fetching clippings for %s (%d day window)", dateStr, days)

	bookmarks, err := a.source.Fetch(a.cfg.Collection, a.cfg.Tag, raindrop.Window{End: opts.Date, Days: days})
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if len(bookmarks) == 0 {
		a.log.Warnf("No bookmarks found for %s in collection %q with tag #%s",
			dateStr, a.cfg.Collection, a.cfg.Tag)

		return nil
	}

	a.log.Info("Rendering draft", logger.Int("bookmarks", len(bookmarks)))

	d := &models.Draft{
		Date:     opts.Date,
		Title:    models.DraftTitle(opts.Date),
		Category: a.cfg.Category,
		Body:     renderer.Render(bookmarks),
	}

	// Save carries forward a previously published URL, so after this
	// point d knows whether the post already exists remotely.
	if err := a.store.Save(d); err != nil {
		return fmt.Errorf("draft save failed: %w", err)
	}

	a.log.Info("Draft written", logger.String("path", a.store.Path(opts.Date)))

	if opts.Publish {
		return a.publish(d)
	}

	if !opts.NoEdit {
		if err := a.openEditor(a.store.Path(opts.Date)); err != nil {
			a.log.Warnf("Could not open editor: %v", err)
		}
	}

	a.log.Infof("Draft ready; publish with: clippings -publish -date %s", dateStr)

	return nil
}

func (a *App) publish(d *models.Draft) error {
	if err := a.cfg.RequirePublishToken(); err != nil {
		return err
	}

	post := micropub.Post{
		Title:       d.Title,
		Body:        d.Body,
		Date:        d.Date,
		Category:    a.cfg.Category,
		PublishTime: a.cfg.PublishTime,
		ExistingURL: d.MicropubURL,
	}

	if post.ExistingURL != "" {
		a.log.Info("Updating published post", logger.String("url", post.ExistingURL))
	} else {
		a.log.Info("Publishing new post", logger.String("slug", post.Slug()))
	}

	url, err := a.publisher.Publish(post)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	if err := a.store.SetPublishedURL(d.Date, url); err != nil {
		return fmt.Errorf("failed to record published URL: %w", err)
	}

	a.log.Info("Published", logger.String("url", url))

	return nil
}
