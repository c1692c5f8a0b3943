package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanad-aid/sanadbot/internal/match"
)

func TestRenderResult(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	res := match.Result{
		Organization:  "Org A",
		ContactPhone:  "0955000111",
		Start:         &start,
		End:           time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DaysRemaining: 10,
		ContactLink:   "https://wa.me/963955000111",
	}

	text := RenderResult("Aya", "حلب", "تعليم", res)

	assert.Contains(t, text, "👤 *Aya*")
	assert.Contains(t, text, "📍 المحافظة: *حلب*")
	assert.Contains(t, text, "🛎 الخدمة: *تعليم*")
	assert.Contains(t, text, "🔹 المنظمة: *Org A*")
	assert.Contains(t, text, "2025-04-01 إلى 2025-06-11 (10 يوم متبقي)")
	assert.Contains(t, text, "📞 رقم التواصل: 0955000111")
}

func TestRenderResultMissingStartDate(t *testing.T) {
	res := match.Result{
		Organization:  "Org B",
		End:           time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DaysRemaining: 3,
	}

	text := RenderResult("Aya", "حمص", "صحة", res)
	assert.Contains(t, text, "غير محدد إلى 2025-06-11")
}

func TestRenderResultEscapesUserText(t *testing.T) {
	res := match.Result{
		Organization:  "Org*Star",
		End:           time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DaysRemaining: 1,
	}

	text := RenderResult("A_a", "حلب", "صحة", res)
	assert.Contains(t, text, `A\_a`)
	assert.Contains(t, text, `Org\*Star`)
}
