package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

const (
	recommendLimit = 5
	// callbackRequestLen keeps callback data under Telegram's 64 byte limit.
	callbackRequestLen = 32
	handlerTimeout     = 2 * time.Minute
)

// sender is the part of the Telegram API the bot talks to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the meal planner application.
type Bot struct {
	api    sender
	app    *app.App
	cfg    *config.Config
	logger *zap.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return newBot(api, application, cfg, logger), nil
}

func newBot(api sender, application *app.App, cfg *config.Config, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, app: application, cfg: cfg, logger: logger}
}

// Router serves the webhook, a health check and the Prometheus metrics.
func (b *Bot) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", b.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", b.app.Collector().Handler())
	return r
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	switch {
	case update.CallbackQuery != nil:
		if !b.isAllowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil:
		if !b.isAllowed(update.Message.From) {
			return
		}
		go b.processMessage(update.Message)
	}
}

func (b *Bot) isAllowed(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	if slices.Contains(b.cfg.TelegramAllowedUserIDs, user.ID) {
		return true
	}
	b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", user.ID), zap.String("username", user.UserName))
	return false
}

// splitCommand returns "/plan", "vegan quick" for "/plan@MyBot vegan quick".
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if strings.HasPrefix(msg.Text, "http://") || strings.HasPrefix(msg.Text, "https://") {
		b.handleClipperRequest(ctx, msg)
		return
	}

	cmd, args := splitCommand(msg.Text)
	switch cmd {
	case "/plan":
		b.handlePlannerRequest(ctx, msg, args)
	case "/recommend":
		b.handleRecommendRequest(ctx, msg, args)
	case "/shopping":
		b.handleShoppingRequest(ctx, msg, args)
	case "/metrics":
		b.handleMetricsRequest(msg)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

const helpText = "🧑‍🍳 *Meal Planner*\n\n" +
	"/plan `[vegetarian|vegan|gluten-free] [quick] [easy] [budget] [prep] [repeat]`: plan next week\n" +
	"/recommend `[same options]`: top recipes for you\n" +
	"/shopping `[YYYY-MM-DD]`: shopping list of your latest plan, or of that week\n" +
	"Send a recipe link to add it to the catalog."

func userKey(user *tgbotapi.User) string {
	return strconv.FormatInt(user.ID, 10)
}

func (b *Bot) handlePlannerRequest(ctx context.Context, msg *tgbotapi.Message, args string) {
	sentMsg, err := b.api.Send(markdownMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...*\n(Ranking recipes and assembling your week)"))
	if err != nil {
		b.logger.Warn("failed to send initial reply", zap.Error(err))
		return
	}

	userID := userKey(msg.From)
	nextMonday := b.app.NextWeekStart()

	exists, err := b.app.PlanExists(ctx, userID, nextMonday)
	if err != nil {
		b.logger.Warn("failed to check existing plan", zap.String("user_id", userID), zap.Error(err))
	}
	if exists {
		promptText := fmt.Sprintf("🗓️ A plan already exists for next week (starting *%s*).\nWhat would you like to do?", nextMonday.Format("2006-01-02"))

		shortReq := args
		if len(shortReq) > callbackRequestLen {
			shortReq = shortReq[:callbackRequestLen]
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Redo Next Week", "redo|"+shortReq),
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Plan Following Week", "next|"+shortReq),
			),
		)
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, promptText)
		edit.ParseMode = tgbotapi.ModeMarkdown
		edit.ReplyMarkup = &keyboard
		b.send(edit)
		return
	}

	req := parsePlanText(args, app.PlanRequestFromConfig(b.cfg))
	req.WeekStart = nextMonday.Format("2006-01-02")
	b.generateAndSendPlan(ctx, userID, msg.Chat.ID, sentMsg.MessageID, req)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if query.Message == nil {
		return
	}
	action, request, ok := strings.Cut(query.Data, "|")
	if !ok {
		return
	}

	req := parsePlanText(request, app.PlanRequestFromConfig(b.cfg))
	nextMonday := b.app.NextWeekStart()
	switch action {
	case "redo":
		req.WeekStart = nextMonday.Format("2006-01-02")
		req.Replace = true
	case "next":
		req.WeekStart = planner.GetNextMonday(nextMonday).Format("2006-01-02")
	default:
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, "🧑‍🍳 *Thinking...*")
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)

	b.generateAndSendPlan(ctx, userKey(query.From), query.Message.Chat.ID, query.Message.MessageID, req)
}

func (b *Bot) generateAndSendPlan(ctx context.Context, userID string, chatID int64, messageID int, req app.PlanRequest) {
	result, err := b.app.GenerateMealPlan(ctx, userID, req)
	if err != nil {
		b.logger.Error("error generating plan", zap.String("user_id", userID), zap.Error(err))
		text := "❌ *Error generating plan:*\n" + codeBlock(err.Error())
		if errors.Is(err, app.ErrEmptyCatalog) {
			text = "📭 The recipe catalog is empty. Send me a recipe link first."
		}
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		b.send(edit)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatWeekMarkdown(result.Week))
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
	b.send(markdownMessage(chatID, formatShoppingMarkdown(result.ShoppingList)))

	if empty := result.Week.EmptySlots(); empty > 0 {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Thin catalog*\nUser: %s\nEligible recipes: %d of %d\nEmpty slots: %d",
			userID, result.EligibleCount, result.CandidateCount, empty))
	}
}

func (b *Bot) handleRecommendRequest(ctx context.Context, msg *tgbotapi.Message, args string) {
	req := parsePlanText(args, app.PlanRequestFromConfig(b.cfg))
	recs, err := b.app.Recommend(ctx, req, recommendLimit)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ *Error:*\n"+codeBlock(err.Error()))
		return
	}
	b.reply(msg.Chat.ID, formatRecommendationsMarkdown(recs))
}

func (b *Bot) handleShoppingRequest(ctx context.Context, msg *tgbotapi.Message, args string) {
	var (
		list *shopping.ShoppingList
		err  error
	)
	if args == "" {
		list, err = b.app.ShoppingList(ctx, userKey(msg.From))
	} else {
		weekStart, parseErr := time.Parse("2006-01-02", args)
		if parseErr != nil {
			b.reply(msg.Chat.ID, "📅 Usage: /shopping `[YYYY-MM-DD]` (the Monday of the week)")
			return
		}
		list, err = b.app.ShoppingListForWeek(ctx, userKey(msg.From), weekStart)
	}
	if errors.Is(err, planner.ErrPlanNotFound) {
		b.reply(msg.Chat.ID, "🛒 No plan for that week yet. Send /plan first.")
		return
	}
	if err != nil {
		b.reply(msg.Chat.ID, "❌ *Error:*\n"+codeBlock(err.Error()))
		return
	}
	b.reply(msg.Chat.ID, formatShoppingMarkdown(list.Items))
}

func (b *Bot) handleClipperRequest(ctx context.Context, msg *tgbotapi.Message) {
	sentMsg, err := b.api.Send(markdownMessage(msg.Chat.ID, "✂️ *Clipping recipe...*\n(Extracting and adding it to your catalog)"))
	if err != nil {
		b.logger.Warn("failed to send initial reply", zap.Error(err))
		return
	}

	var finalText string
	rec, err := b.app.ClipURL(ctx, strings.TrimSpace(msg.Text))
	if err != nil {
		b.logger.Error("error clipping recipe", zap.String("url", msg.Text), zap.Error(err))
		finalText = "❌ *Error clipping recipe:*\n" + codeBlock(err.Error())
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*Ready in:* %d min\n*Per serving:* %.0f kcal",
			escapeMarkdown(rec.Title), rec.ReadyInMinutes, rec.Calories)
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.app.Metrics().GetDailyUsage(7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	runs, err := b.app.Metrics().RecentPlanRuns(5)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🍽 *Recent Plans*\n")
	if len(runs) == 0 {
		sb.WriteString("_No plans yet_\n")
	}
	for _, r := range runs {
		fmt.Fprintf(&sb, "• %s: %d/%d eligible, %d empty, %dms\n",
			r.Timestamp.Format("Jan 2 15:04"), r.EligibleCount, r.CandidateCount, r.EmptySlots, r.LatencyMS)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", mem.Alloc/1024/1024, mem.Sys/1024/1024)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", runtime.NumGoroutine())
	fmt.Fprintf(&sb, "• Disk Data: %s\n", metrics.FormatBytes(metrics.DataDirSize(filepath.Dir(b.cfg.DatabasePath))))
	fmt.Fprintf(&sb, "• Schema: v%d\n", b.app.SchemaVersion())

	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.send(markdownMessage(b.cfg.AdminTelegramID, text))
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(markdownMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("failed to send telegram message", zap.Error(err))
	}
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}
