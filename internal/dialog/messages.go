package dialog

import (
	"fmt"

	"github.com/sanad-aid/sanadbot/core/telegram/format"
	"github.com/sanad-aid/sanadbot/internal/match"
)

// User-facing texts, carried over from the deployed Arabic script.
const (
	MsgAskName           = "مرحباً! ما اسمك؟"
	MsgChooseService     = "اختر نوع الخدمة المطلوبة:"
	MsgChooseGovernorate = "اختر المحافظة:"
	MsgDataUnavailable   = "عذراً، لا يمكن تحميل البيانات حالياً."
	MsgNoResults         = "لا توجد نتائج متاحة حالياً."
	MsgWhatsAppButton    = "📱 تواصل عبر واتساب"
	MsgUnknownText       = "أرسل /start لبدء البحث عن الخدمات."
	MsgHelp              = "هذا البوت يساعدك بالعثور على مشاريع المساعدات الإنسانية.\n" +
		"أرسل /start ثم اتبع الخطوات: الاسم، نوع الخدمة، المحافظة."

	dateLayout = "2006-01-02"
	noDate     = "غير محدد"
)

// RenderResult formats one match as a Markdown message. Name and
// organization are user-sourced and get escaped.
func RenderResult(name, governorate, service string, r match.Result) string {
	start := noDate
	if r.Start != nil {
		start = r.Start.Format(dateLayout)
	}
	return fmt.Sprintf(
		"👤 *%s*\n"+
			"📍 المحافظة: *%s*\n"+
			"🛎 الخدمة: *%s*\n\n"+
			"🔹 المنظمة: *%s*\n"+
			"📅 المدة: %s إلى %s (%d يوم متبقي)\n"+
			"📞 رقم التواصل: %s\n",
		format.EscapeV1(name),
		governorate,
		service,
		format.EscapeV1(r.Organization),
		start,
		r.End.Format(dateLayout),
		r.DaysRemaining,
		r.ContactPhone,
	)
}
