package transfer

type ProjectRequest struct {
	Name        string  `json:"name"`
	CoolifyUUID string  `json:"coolifyUuid"`
	Description *string `json:"description"`
}

type SyncResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}
