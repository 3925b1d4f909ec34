package consumer

import "fmt"

// Issue statuses known to the issue service. Anything else falls through to
// the generic wording so the mapping can never fail to produce output.
const (
	statusPending    = "Pending"
	statusInProgress = "InProgress"
	statusResolved   = "Resolved"
	statusRejected   = "Rejected"
)

func renderCreated(issueTitle string) (string, string) {
	return "Sorununuz Alındı", fmt.Sprintf(`"%s" bildiriminiz başarıyla oluşturuldu.`, issueTitle)
}

func renderStatusChanged(issueTitle, status string) (string, string) {
	title := "Sorun Durumu Güncellendi"

	switch status {
	case statusPending:
		return title, fmt.Sprintf(`"%s" bildiriminiz beklemeye alındı.`, issueTitle)
	case statusInProgress:
		return title, fmt.Sprintf(`"%s" bildiriminiz işleme alındı.`, issueTitle)
	case statusResolved:
		return title, fmt.Sprintf(`"%s" bildiriminiz tamamlandı.`, issueTitle)
	case statusRejected:
		return title, fmt.Sprintf(`"%s" bildiriminiz reddedildi.`, issueTitle)
	default:
		return title, fmt.Sprintf(`"%s" bildiriminizin durumu "%s" olarak güncellendi.`, issueTitle, status)
	}
}
