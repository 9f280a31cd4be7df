package models

import "time"

type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeDOCX  FileType = "docx"
	FileTypeXLSX  FileType = "xlsx"
	FileTypeJPG   FileType = "jpg"
	FileTypePNG   FileType = "png"
	FileTypeZIP   FileType = "zip"
	FileTypeOther FileType = "other"
)

// FileTypeFromName maps a filename extension to a FileType.
func FileTypeFromName(filename string) FileType {
	dot := -1
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 || dot == len(filename)-1 {
		return FileTypeOther
	}

	switch ext := filename[dot+1:]; ext {
	case "pdf", "PDF":
		return FileTypePDF
	case "docx", "DOCX":
		return FileTypeDOCX
	case "xlsx", "XLSX":
		return FileTypeXLSX
	case "jpg", "jpeg", "JPG", "JPEG":
		return FileTypeJPG
	case "png", "PNG":
		return FileTypePNG
	case "zip", "ZIP":
		return FileTypeZIP
	default:
		return FileTypeOther
	}
}

// File is an attachment bound to a catalog model. StorageKey addresses the
// blob in whichever storage backend is configured.
type File struct {
	ID         int64
	ModelID    int64
	Title      string
	FileType   FileType
	StorageKey string
	SizeBytes  int64
	IsPublic   bool
	Version    string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func (f *File) IsImage() bool {
	return f.FileType == FileTypeJPG || f.FileType == FileTypePNG
}
