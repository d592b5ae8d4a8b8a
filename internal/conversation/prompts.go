package conversation

import (
	"fmt"
	"strings"

	"github.com/shenikar/disaster_report_bot/internal/models"
)

// Тексты подсказок близки к исходному боту; транспорт рендерит их как есть

func welcomeReply(username string) *Reply {
	name := username
	if name == "" {
		name = "there"
	}
	return &Reply{
		Text: fmt.Sprintf(
			"🚨 Disaster Management System Bot 🚨\n\n"+
				"Hello %s! I'm here to help you report disasters and emergencies.\n\n"+
				"Available Commands:\n"+
				"/report - Report a new disaster\n"+
				"/status - Check your recent reports\n"+
				"/help - Get help and instructions\n"+
				"/emergency - Quick emergency report\n\n"+
				"Stay safe! 🙏", name),
		Buttons: []string{"🚨 Report Disaster", "📊 My Reports", "ℹ️ Help", "🆘 Emergency"},
	}
}

func helpReply() *Reply {
	return &Reply{
		Text: "📋 How to Report a Disaster:\n\n" +
			"1. Use /report\n" +
			"2. Select disaster type\n" +
			"3. Choose severity level\n" +
			"4. Share your location\n" +
			"5. Add description and photos (optional)\n" +
			"6. Submit report\n\n" +
			"Emergency Reporting:\n" +
			"- Use /emergency for critical situations\n" +
			"- Your location will be immediately requested\n" +
			"- Report will be marked as high priority\n\n" +
			"Use /cancel at any step to discard the current report.\n" +
			"Need immediate help? Contact emergency services: 112",
	}
}

func typePrompt() *Reply {
	values := make([]string, len(models.DisasterTypes))
	for i, dt := range models.DisasterTypes {
		values[i] = string(dt)
	}
	return &Reply{
		Text:    "🔍 What type of disaster are you reporting?",
		Choices: pairRows(values),
	}
}

func severityPrompt(dt models.DisasterType) *Reply {
	values := make([]string, len(models.SeverityLevels))
	for i, sev := range models.SeverityLevels {
		values[i] = string(sev)
	}
	return &Reply{
		Text:    fmt.Sprintf("✅ Disaster Type: %s\n\n📊 What is the severity level?", dt),
		Choices: pairRows(values),
	}
}

func locationPrompt() *Reply {
	return &Reply{
		Text:            "📍 Please share your location:",
		RequestLocation: true,
	}
}

func emergencyLocationPrompt() *Reply {
	return &Reply{
		Text:            "🆘 EMERGENCY REPORT\n\nPlease share your current location immediately!",
		RequestLocation: true,
	}
}

func describePrompt() *Reply {
	return &Reply{
		Text: "✅ Location received!\n\n" +
			"📝 Please provide a description of the situation (or click 'Skip Description'):",
		Buttons: []string{SkipSentinel},
	}
}

func attachPrompt() *Reply {
	return &Reply{
		Text:    "📸 You can now send photos (optional) or click 'Submit Report' to finish:",
		Buttons: []string{SubmitSentinel, SkipPhotosSentinel},
	}
}

func attachAck(total int) *Reply {
	return &Reply{
		Text: fmt.Sprintf("✅ Photo received! (%d total)\nSend more photos or click 'Submit Report' to finish.", total),
		Buttons: []string{SubmitSentinel},
	}
}

func successReply(report *models.Report) *Reply {
	tail := "📋 Your report is being processed."
	if report.Severity == models.SeverityCritical {
		tail = "🚨 Emergency services have been notified!"
	}
	return &Reply{
		Text: fmt.Sprintf(
			"✅ Report Submitted Successfully!\n\n"+
				"🆔 Report ID: %s\n"+
				"🏷️ Type: %s\n"+
				"📊 Severity: %s\n"+
				"📍 Location: Received\n\n%s\n\n"+
				"Thank you for helping keep the community safe! 🙏",
			report.ID, report.Type, report.Severity, tail),
		RemoveKeyboard: true,
	}
}

func submissionFailedReply() *Reply {
	return &Reply{
		Text: "❌ Error submitting report. Please click 'Submit Report' to try again or /cancel to discard.",
		Buttons: []string{SubmitSentinel},
	}
}

func restartReply() *Reply {
	return &Reply{
		Text: "❌ Session expired. Please start a new report with /report",
	}
}

func cancelledReply() *Reply {
	return &Reply{
		Text:           "🗑 Report cancelled. Use /report to start a new one.",
		RemoveKeyboard: true,
	}
}

func nothingToCancelReply() *Reply {
	return &Reply{
		Text: "There is no report in progress. Use /report to start one.",
	}
}

func unknownReply() *Reply {
	return &Reply{
		Text: "👋 Hi! Use /start to begin or /report to report a disaster.",
	}
}

func statusReply(reports []*models.Report) *Reply {
	if len(reports) == 0 {
		return &Reply{Text: "📭 You haven't submitted any reports yet."}
	}

	var b strings.Builder
	b.WriteString("📊 Your Recent Reports:\n\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "🆔 %s\n🏷️ %s\n📊 %s\n📋 %s\n📅 %s\n\n",
			r.ID, r.Type, r.Severity, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return &Reply{Text: b.String()}
}

// pairRows раскладывает значения по два в ряд, как клавиатуры исходного бота
func pairRows(values []string) [][]string {
	rows := make([][]string, 0, (len(values)+1)/2)
	for i := 0; i < len(values); i += 2 {
		end := i + 2
		if end > len(values) {
			end = len(values)
		}
		rows = append(rows, values[i:end])
	}
	return rows
}
