package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ragify-be/internal/config"
	"ragify-be/internal/pkg/logger"
	"ragify-be/pkg/chat"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/intent"
	"ragify-be/pkg/llm/factory"
	"ragify-be/pkg/notebook"

	"github.com/fatih/color"
)

const help = `Commands:
  /note            show the notebook
  /note <text>     replace the notebook content (\n for newlines)
  /select <a> <b>  select runes [a, b) of the notebook
  /unselect        clear the selection
  /docs <id...>    set the selected document ids
  /generate        write notes from the conversation so far
  /state           show router state
  /quit            exit`

func main() {
	cfg := config.Load()
	log := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	defer log.Sync()

	provider, err := factory.NewLLMProvider(factory.Params{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   cfg.APIKey(),
	})
	if err != nil {
		color.Red("Failed to initialize LLM provider: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	nb, err := notebook.Open(ctx, "repl", notebook.NewMemoryStore(0), provider, log)
	if err != nil {
		color.Red("Failed to open notebook: %v", err)
		os.Exit(1)
	}

	router, err := conversation.NewRouter(conversation.Deps{
		Chat:       chat.NewService(provider, log, chat.Options{ExtractNewPTKB: cfg.Ai.ExtractNewPTKB}),
		Notebook:   nb,
		Classifier: intent.NewClassifier(intent.WithSelectionWeight(cfg.Router.SelectionWeight)),
		Resolver:   intent.NewDefaultResolver(),
		Extractor:  intent.NewExtractor(),
		Logger:     log,
	})
	if err != nil {
		color.Red("Failed to build router: %v", err)
		os.Exit(1)
	}

	color.Cyan("ragify repl (%s / %s). Type /help for commands.\n", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		color.New(color.FgHiBlack).Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if !command(ctx, line, router, nb) {
				return
			}
			continue
		}

		res, err := router.Handle(ctx, line)
		if err != nil {
			color.Red("error: %v", err)
			continue
		}
		printTurn(res)
	}
}

func command(ctx context.Context, line string, router *conversation.Router, nb *notebook.Notebook) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return false
	case "/help":
		fmt.Println(help)
	case "/note":
		if arg == "" {
			printNotebook(nb)
			return true
		}
		if err := nb.SetContent(ctx, strings.ReplaceAll(arg, `\n`, "\n")); err != nil {
			color.Red("error: %v", err)
			return true
		}
		color.Green("notebook updated")
	case "/select":
		fields := strings.Fields(arg)
		if len(fields) != 2 {
			color.Red("usage: /select <start> <end>")
			return true
		}
		start, err1 := strconv.Atoi(fields[0])
		end, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			color.Red("usage: /select <start> <end>")
			return true
		}
		sel, err := nb.Select(ctx, start, end)
		if err != nil {
			color.Red("error: %v", err)
			return true
		}
		color.Green("selected %q", sel.Text)
	case "/unselect":
		if err := nb.ClearSelection(ctx); err != nil {
			color.Red("error: %v", err)
			return true
		}
		color.Green("selection cleared")
	case "/docs":
		router.SetSelectedDocuments(strings.Fields(arg))
		color.Green("selected documents: %v", router.SelectedDocuments())
	case "/generate":
		content, err := nb.Generate(ctx, router.Messages())
		if err != nil {
			color.Red("error: %v", err)
			return true
		}
		color.Magenta("%s", content)
	case "/state":
		printState(router, nb)
	default:
		color.Red("unknown command %s, try /help", name)
	}
	return true
}

func printTurn(res *conversation.TurnResult) {
	label := string(res.Route)
	if res.Decision != nil {
		label = fmt.Sprintf("%s %s %.2f", label, res.Decision.Intent, res.Decision.Confidence)
	}
	color.New(color.FgHiBlack).Printf("[%s]\n", label)

	switch {
	case res.Failed:
		color.Red("%s", res.Reply.Text)
	case res.Route == conversation.RouteClarify:
		color.Yellow("%s", res.Reply.Text)
	default:
		color.Green("%s", res.Reply.Text)
	}
	for _, c := range res.Reply.Citations {
		color.New(color.FgHiBlack).Printf("  ↳ %s %s\n", c.DocID, c.Title)
	}
}

func printNotebook(nb *notebook.Notebook) {
	doc := nb.Document()
	if strings.TrimSpace(doc.Content) == "" {
		color.Yellow("(empty notebook)")
		return
	}
	color.Magenta("%s", doc.Content)
	if doc.Selection != nil {
		color.Cyan("selection [%d, %d): %q", doc.Selection.Start, doc.Selection.End, doc.Selection.Text)
	}
}

func printState(router *conversation.Router, nb *notebook.Notebook) {
	state := nb.State()
	color.Cyan("state:       %s", router.State())
	if s := router.Session(); s != nil {
		color.Cyan("pending:     %q", s.OriginalUtterance)
	}
	color.Cyan("notebook:    content=%t selection=%t", state.HasContent, state.HasSelection)
	color.Cyan("documents:   %v", router.SelectedDocuments())
	color.Cyan("ptkb:        %v", router.PTKB())
	color.Cyan("messages:    %d", len(router.Messages()))
}
