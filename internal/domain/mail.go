package domain

// MailQueue api 与 mail 服务共用的邮件队列
const MailQueue = "email_queue"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeCreateUser      = "create_user"
	MailTypeSpecialConflict = "special_conflict"
)

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SpecialConflictMailItem struct {
	Date        string `json:"date"`
	FirstWindow string `json:"firstWindow"`
	OtherWindow string `json:"otherWindow"`
}

type SpecialConflictMailData struct {
	FullName  string                    `json:"fullName"`
	ZoneID    string                    `json:"zoneID"`
	Conflicts []SpecialConflictMailItem `json:"conflicts"`
}
