package i18n

import "fmt"

// BookletOrder is what a booklet order message needs to know.
type BookletOrder struct {
	Title   string
	Subject string
	Faculty string
	Year    string
	Pages   int
}

// OrderMessage is the prefilled WhatsApp text for ordering a booklet.
func (l Lang) OrderMessage(b BookletOrder) string {
	if l == AR {
		return fmt.Sprintf("أريد طباعة الكتيب التالي:\n\n📚 العنوان: %s\n📖 الموضوع: %s\n🏫 الكلية: %s\n📅 السنة: %s\n📄 الصفحات: %d\n\nيرجى تزويدي بخيارات الطباعة والأسعار.",
			b.Title, b.Subject, b.Faculty, b.Year, b.Pages)
	}
	return fmt.Sprintf("I want to print the following booklet:\n\n📚 Title: %s\n📖 Subject: %s\n🏫 Faculty: %s\n📅 Year: %s\n📄 Pages: %d\n\nPlease provide me with the printing options and pricing.",
		b.Title, b.Subject, b.Faculty, b.Year, b.Pages)
}

// InquiryMessage is the footer's general question.
func (l Lang) InquiryMessage() string {
	if l == AR {
		return "مرحبا! لدي سؤال حول خدمات توبكال ليب"
	}
	return "Hello! I have a question about TOUBKAL LIB services."
}

// PrintingMessage opens a conversation for the file printing service.
func (l Lang) PrintingMessage() string {
	if l == AR {
		return "مرحبا! أريد استخدام خدمة الطباعة الخاصة بكم. أنا مستعد لإرسال ملفي. يرجى إرشادي خلال العملية."
	}
	return "Hello! I want to use your printing service. I'm ready to send my file. Please guide me through the process."
}
