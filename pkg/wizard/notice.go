package wizard

// NoticeVariant controls how a notice is styled by the client.
type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeSuccess     NoticeVariant = "success"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a transient message for the user. Notices are never persisted.
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     NoticeVariant `json:"variant"`
}

var (
	NoticeNoSolutions = Notice{
		Title:       "No Solutions Found",
		Description: "AI couldn't suggest solutions. Try rephrasing or proceed with your own.",
		Variant:     NoticeDefault,
	}
	NoticeSuggestFailed = Notice{
		Title:       "Error Suggesting Solutions",
		Description: "Failed to get suggestions from AI. You can go back and try again or enter your own solution.",
		Variant:     NoticeDestructive,
	}
	NoticeGenerated = Notice{
		Title:       "BRD Generated!",
		Description: "Your Business Requirements Document is ready for review.",
		Variant:     NoticeSuccess,
	}
	NoticeGenerateFailed = Notice{
		Title:       "Error Generating BRD",
		Description: "Failed to generate the BRD. Please try again.",
		Variant:     NoticeDestructive,
	}
	NoticeRestarted = Notice{
		Title:       "Restarted",
		Description: "The process has been reset.",
		Variant:     NoticeDefault,
	}
	NoticeDocxFailed = Notice{
		Title:       "DOCX Download Error",
		Description: "Failed to download DOCX. Try another format.",
		Variant:     NoticeDestructive,
	}
)

// DownloadedNotice confirms a finished export.
func DownloadedNotice(label, filename string) Notice {
	return Notice{
		Title:       "Downloaded " + label,
		Description: filename + " has been downloaded.",
		Variant:     NoticeDefault,
	}
}
