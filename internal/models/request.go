package models

// DownloadItem names one object in an archive download request.
type DownloadItem struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
}

type DownloadFilesRequest struct {
	Downloads []DownloadItem `json:"downloads" binding:"required,min=1"`
}

type ImportURLsRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}
