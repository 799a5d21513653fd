package transfer

type BackupRequest struct {
	DatabaseUUID string `json:"databaseUuid"`
}

type ArchiveRequest struct {
	DatabaseUUID string `json:"databaseUuid"`
	Filename     string `json:"filename"`
}
