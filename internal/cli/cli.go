// Package cli is the terminal entry point. It resolves configuration,
// restores the cached session, and maps each action flag onto the same
// panels and session provider the HTTP shell uses.
package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/buddyapp/buddy/internal/config"
	"github.com/buddyapp/buddy/internal/core"
	"github.com/buddyapp/buddy/internal/domain"
	"github.com/buddyapp/buddy/internal/i18n"
	debuglog "github.com/buddyapp/buddy/internal/log"
	"github.com/buddyapp/buddy/internal/plugins/api"
	"github.com/buddyapp/buddy/internal/plugins/auth"
	"github.com/buddyapp/buddy/internal/plugins/db/firedb"
	"github.com/buddyapp/buddy/internal/plugins/db/fsdb"
	"github.com/buddyapp/buddy/internal/server"
	"github.com/buddyapp/buddy/internal/util"
)

// Cli runs one action and returns the error to exit with.
func Cli(version string) error {
	flags, err := Init()
	if err != nil {
		return err
	}
	if flags.Version {
		fmt.Println(version)
		return nil
	}

	debuglog.SetLevel(debuglog.LevelFromInt(flags.Debug))

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if flags.Language != "" {
		cfg.Language = flags.Language
	}
	if _, err := i18n.Init(cfg.Language); err != nil {
		debuglog.Debug(debuglog.Basic, "i18n init: %v\n", err)
	}

	action, err := flags.action()
	if err != nil {
		return err
	}

	backend := api.NewClient(cfg)
	authClient := auth.NewClient(cfg.FirebaseAPIKey)
	store := firedb.NewClient(cfg.FirebaseProjectID)

	var cache *fsdb.SessionStore
	if dir, err := config.ConfigDir(); err == nil {
		cache = fsdb.NewSessionStore(dir)
	}
	provider := core.NewSessionProvider(authClient, store.Profiles(), cache)

	ctx := context.Background()
	provider.Resolve(ctx)

	r := &runner{
		flags:    flags,
		cfg:      cfg,
		backend:  backend,
		provider: provider,
		profiles: store.Profiles(),
	}
	return r.run(ctx, action)
}

type runner struct {
	flags    *Flags
	cfg      *config.Settings
	backend  *api.Client
	provider *core.SessionProvider
	profiles *firedb.ProfileRepository
}

func (r *runner) run(ctx context.Context, action string) error {
	switch action {
	case "register":
		return r.register(ctx)
	case "login":
		return r.login(ctx)
	case "logout":
		r.provider.SignOut()
		fmt.Println(i18n.T("logout_done"))
		return nil
	case "profile":
		return r.showProfile(ctx)
	case "save-profile":
		return r.saveProfile(ctx)
	case "text":
		return r.text(ctx)
	case "image":
		return r.image(ctx)
	case "finance":
		return r.finance(ctx)
	case "ask":
		return r.ask(ctx)
	case "compare":
		return r.compare(ctx)
	case "search":
		_, err := r.search(ctx)
		return err
	case "search-add", "add":
		return r.searchAdd(ctx)
	case "serve":
		return r.serve()
	}
	return fmt.Errorf("unknown action %q", action)
}

func (r *runner) register(ctx context.Context) error {
	tipo, err := domain.ParseAccountType(r.flags.Tipo)
	if err != nil {
		return err
	}
	fields := core.RegisterFields{
		Nombre:   r.flags.Nombre,
		Apellido: r.flags.Apellido,
		Tipo:     tipo,
		Bio:      r.flags.Bio,
	}
	sess, err := r.provider.SignUp(ctx, r.flags.Email, r.flags.Password, fields)
	if err != nil && sess == nil {
		return err
	}
	fmt.Printf("%s (%s)\n", i18n.T("register_success"), sess.Email)
	if err != nil {
		// The account exists but the profile write failed; the session
		// stands and --save-profile can retry.
		fmt.Fprintf(os.Stderr, "%s: %v\n", i18n.T("register_profile_warning"), err)
	}
	return nil
}

func (r *runner) login(ctx context.Context) error {
	sess, err := r.provider.SignIn(ctx, r.flags.Email, r.flags.Password)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", i18n.T("login_success"), sess.Email)
	return nil
}

func (r *runner) showProfile(ctx context.Context) error {
	sess, err := r.provider.ActiveSession()
	if err != nil {
		return err
	}
	profile, err := r.profiles.Get(ctx, sess, sess.UID)
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Println(i18n.T("profile_missing"))
		return nil
	}
	fmt.Printf("%s %s <%s>\n", profile.Nombre, profile.Apellido, profile.Email)
	fmt.Printf("tipo: %s\n", profile.Tipo)
	if profile.Bio != "" {
		fmt.Printf("bio: %s\n", profile.Bio)
	}
	return nil
}

// saveProfile drives the editor the way the profile screen does: load,
// begin editing, set fields, save. Unset flags keep their stored values.
func (r *runner) saveProfile(ctx context.Context) error {
	editor := core.NewProfileEditor(r.provider, r.profiles)
	if err := editor.Load(ctx); err != nil {
		return err
	}
	if err := editor.BeginEdit(); err != nil {
		return err
	}

	current := editor.Profile()
	nombre := firstNonEmpty(r.flags.Nombre, current.Nombre)
	apellido := firstNonEmpty(r.flags.Apellido, current.Apellido)
	bio := current.Bio
	if r.flags.Bio != "" {
		bio = r.flags.Bio
	}
	tipo := current.Tipo
	if r.flags.Tipo != "" {
		parsed, err := domain.ParseAccountType(r.flags.Tipo)
		if err != nil {
			return err
		}
		tipo = parsed
	}

	if err := editor.SetFields(nombre, apellido, tipo, bio); err != nil {
		return err
	}
	if err := editor.Save(ctx); err != nil {
		return err
	}
	fmt.Println(i18n.T("profile_saved"))
	return nil
}

func (r *runner) text(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := runPanel(ctx, r.backend.Generate, domain.TextRequest{
		Platform: r.flags.Platform,
		Topic:    r.flags.Topic,
		Language: r.cfg.Language,
	})
	if err != nil {
		return err
	}
	fmt.Println(resp.Content)
	return nil
}

func (r *runner) image(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := runPanel(ctx, r.backend.GenerateImage, domain.ImageRequest{
		Tema:      r.flags.Tema,
		Audiencia: r.flags.Audiencia,
		Estilo:    r.flags.Estilo,
		Colores:   r.flags.Colores,
		Detalles:  r.flags.Detalles,
	})
	if err != nil {
		return err
	}

	if resp.Mensaje != "" {
		fmt.Println(resp.Mensaje)
	}
	out := r.flags.Out
	if out == "" {
		out = resp.Filename
	}
	if out == "" || resp.Imagen == "" {
		fmt.Println(resp.Descripcion)
		return nil
	}
	out, err = util.GetAbsolutePath(out)
	if err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Imagen)
	if err != nil {
		return errors.Wrap(err, "decode image payload")
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", i18n.T("image_decoded_hint"), out)
	return nil
}

func (r *runner) finance(ctx context.Context) error {
	sess, err := r.provider.ActiveSession()
	if err != nil {
		return err
	}
	resp, err := runPanel(ctx, r.backend.NewsNLP, domain.FinanceRequest{
		Prompt:   r.flags.Prompt,
		Language: r.cfg.Language,
		CoinName: r.flags.Coin,
		UID:      sess.UID,
	})
	if err != nil {
		return err
	}
	fmt.Println(resp.Response)
	return nil
}

func (r *runner) ask(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := runPanel(ctx, r.backend.RAGGenerate, domain.RAGQuestion{
		Query:       r.flags.Query,
		TopK:        r.flags.TopK,
		Temperature: r.flags.Temperature,
		MaxTokens:   r.flags.MaxTokens,
	})
	if err != nil {
		return err
	}
	fmt.Println(resp.Response)
	if len(resp.SourceDocuments) > 0 {
		fmt.Printf("\n[%d documents]\n", resp.DocumentsRetrieved)
		for _, doc := range resp.SourceDocuments {
			fmt.Printf("  - %s\n", doc.Title)
		}
	}
	return nil
}

func (r *runner) compare(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := runPanel(ctx, r.backend.RAGCompare, domain.CompareRequest{
		Query:       r.flags.Query,
		TopK:        r.flags.TopK,
		Temperature: r.flags.Temperature,
		MaxTokens:   r.flags.MaxTokens,
	})
	if err != nil {
		return err
	}
	fmt.Println("=== grounded ===")
	fmt.Println(resp.RAGResponse.Response)
	fmt.Println("\n=== ungrounded ===")
	fmt.Println(resp.SimpleResponse.Response)
	fmt.Printf("\ngrounded used documents: %v\n", resp.Comparison.RAGHasDocuments)
	return nil
}

func (r *runner) search(ctx context.Context) (*core.ArticleLibrary, error) {
	if err := r.requireSession(); err != nil {
		return nil, err
	}
	library := core.NewArticleLibrary(r.backend.SearchArticles, r.backend.AddArticles)
	result, err := library.Search(ctx, domain.SearchRequest{
		Topic:        r.flags.Topic,
		MaxResults:   r.flags.MaxResults,
		DownloadPDFs: r.flags.DownloadPDFs,
		ExtractText:  r.flags.ExtractText,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("%d articles for %q\n", result.TotalFound, result.Topic)
	for i, doc := range result.Documents {
		fmt.Printf("%2d. %s (%s)\n", i+1, doc.Title, strings.Join(doc.Authors, ", "))
	}
	return library, nil
}

func (r *runner) searchAdd(ctx context.Context) error {
	library, err := r.search(ctx)
	if err != nil {
		return err
	}
	if len(r.flags.Select) == 0 {
		return fmt.Errorf("%s", i18n.T("selection_empty"))
	}
	for _, n := range r.flags.Select {
		library.Toggle(n - 1)
	}
	result, err := library.AddSelected(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d)\n", i18n.T("articles_added"), result.VectorResults.Processed)
	return nil
}

func (r *runner) serve() error {
	srv := server.New(r.provider, r.profiles, r.backend)
	fmt.Printf("%s %s\n", i18n.T("serve_listening"), r.flags.Address)
	return srv.Serve(r.flags.Address)
}

func (r *runner) requireSession() error {
	_, err := r.provider.ActiveSession()
	return err
}

// runPanel pushes one request through a fresh panel and waits it out.
func runPanel[Req, Resp any](ctx context.Context, call func(context.Context, Req) (*Resp, error), req Req) (*Resp, error) {
	panel := core.NewPanel(call)
	if err := panel.Submit(ctx, req); err != nil {
		return nil, err
	}
	phase, resp, err := panel.Wait(ctx)
	if phase != domain.Succeeded {
		return nil, err
	}
	return resp, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
