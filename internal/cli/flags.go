package cli

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// Flags covers every BUDDY action. Exactly one action flag is expected
// per invocation; field values feed the matching request.
type Flags struct {
	Register bool   `long:"register" description:"Create an account"`
	Login    bool   `long:"login" description:"Sign in"`
	Logout   bool   `long:"logout" description:"Sign out"`
	Email    string `long:"email" description:"Account email"`
	Password string `long:"password" description:"Account password"`
	Nombre   string `long:"nombre" description:"First name (register)"`
	Apellido string `long:"apellido" description:"Last name (register)"`
	Tipo     string `long:"tipo" description:"Account type: particular or empresa" default:"particular"`
	Bio      string `long:"bio" description:"Short bio"`

	Profile     bool `long:"profile" description:"Show your profile"`
	SaveProfile bool `long:"save-profile" description:"Update your profile fields"`

	Text     bool   `long:"text" description:"Generate social media copy"`
	Platform string `long:"platform" description:"Target platform for --text"`
	Topic    string `long:"topic" description:"Topic for --text or --search"`

	Image     bool   `long:"image" description:"Generate an image"`
	Tema      string `long:"tema" description:"Image subject"`
	Audiencia string `long:"audiencia" description:"Image audience"`
	Estilo    string `long:"estilo" description:"Image style"`
	Colores   string `long:"colores" description:"Image color palette"`
	Detalles  string `long:"detalles" description:"Extra image details"`
	Out       string `short:"o" long:"out" description:"Write the generated image to this file"`

	Finance bool   `long:"finance" description:"Ask the financial assistant"`
	Prompt  string `long:"prompt" description:"Question for --finance"`
	Coin    string `long:"coin" description:"Coin to focus --finance on"`

	Ask         bool    `long:"ask" description:"Ask the document-grounded assistant"`
	Compare     bool    `long:"compare" description:"Compare grounded and ungrounded answers"`
	Query       string  `long:"query" description:"Question for --ask or --compare"`
	TopK        int     `long:"top-k" description:"Documents to retrieve" default:"5"`
	Temperature float64 `long:"temperature" description:"Sampling temperature" default:"0.7"`
	MaxTokens   int     `long:"max-tokens" description:"Response token cap" default:"1000"`

	Search       bool  `long:"search" description:"Search arXiv articles"`
	MaxResults   int   `long:"max-results" description:"Articles to fetch for --search" default:"10"`
	DownloadPDFs bool  `long:"download-pdfs" description:"Fetch PDFs during --search"`
	ExtractText  bool  `long:"extract-text" description:"Extract article text during --search"`
	Add          bool  `long:"add" description:"Add searched articles to the knowledge base"`
	Select       []int `long:"select" description:"1-based article numbers for --add (repeatable)"`

	Serve   bool   `long:"serve" description:"Run the HTTP shell"`
	Address string `long:"address" description:"Listen address for --serve" default:":8080"`

	Language string `short:"g" long:"language" description:"Message language, e.g. en or es"`
	Debug    int    `short:"d" long:"debug" description:"Debug level (0-4)" default:"0"`
	Version  bool   `long:"version" description:"Print version and exit"`
}

// Init parses the command line into a Flags value.
func Init() (*Flags, error) {
	f := &Flags{}
	parser := flags.NewParser(f, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, err
	}
	return f, nil
}

func (f *Flags) action() (string, error) {
	set := []string{}
	for name, on := range map[string]bool{
		"register": f.Register, "login": f.Login, "logout": f.Logout,
		"profile": f.Profile, "save-profile": f.SaveProfile,
		"text": f.Text, "image": f.Image, "finance": f.Finance,
		"ask": f.Ask, "compare": f.Compare, "search": f.Search, "add": f.Add,
		"serve": f.Serve, "version": f.Version,
	} {
		if on {
			set = append(set, name)
		}
	}
	switch len(set) {
	case 0:
		return "", fmt.Errorf("no action given, see --help")
	case 1:
		return set[0], nil
	case 2:
		// --search --add is the one legal pair: search, pick, ingest.
		if f.Search && f.Add {
			return "search-add", nil
		}
	}
	return "", fmt.Errorf("choose one action, got %d", len(set))
}
