package routes

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clickdone/internal/database"
)

type FileRoutes struct {
	server ServerInterface
}

func NewFileRoutes(server ServerInterface) *FileRoutes {
	return &FileRoutes{server: server}
}

func (fr *FileRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(fr.server)

	r.GET("/requests/:id/files", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), fr.listFilesHandler)
	r.POST("/requests/:id/files", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), fr.uploadFileHandler)
	r.GET("/files/:fileID/download", middleware.AuthMiddleware(), fr.downloadFileHandler)
	r.DELETE("/files/:fileID", middleware.AuthMiddleware(), fr.deleteFileHandler)
}

// resolveFile looks up the :fileID metadata and authorizes the acting
// user against the owning request. Responses are written on failure.
func (fr *FileRoutes) resolveFile(c *gin.Context) (*database.FileMetadata, bool) {
	user := c.MustGet("user").(*database.User)

	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return nil, false
	}

	db := fr.server.GetDB()
	metadata, err := db.GetFileByID(fileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return nil, false
	}

	req, err := db.GetRequestByID(metadata.RequestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return nil, false
	}
	if !canAccessRequest(user, req) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this file"})
		return nil, false
	}

	return metadata, true
}

func (fr *FileRoutes) listFilesHandler(c *gin.Context) {
	req := c.MustGet("request").(*database.WebsiteRequest)

	db := fr.server.GetDB()
	files, err := db.ListFiles(req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// uploadFileHandler accepts one file per action: store the blob, then
// write its metadata row.
func (fr *FileRoutes) uploadFileHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)
	req := c.MustGet("request").(*database.WebsiteRequest)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	s3Service := fr.server.GetS3Service()
	result, err := s3Service.UploadRequestFile(c.Request.Context(), file, header, req.ID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	metadata := &database.FileMetadata{
		RequestID:       req.ID,
		UserID:          user.ID,
		UserDisplayName: user.Name,
		FileName:        header.Filename,
		FileType:        result.MimeType,
		FileSize:        result.FileSize,
		FileHash:        result.FileHash,
		S3Key:           result.S3Key,
		DownloadURL:     result.DownloadURL,
	}

	db := fr.server.GetDB()
	if err := db.CreateFileMetadata(metadata); err != nil {
		// The blob is now orphaned; clean it up best-effort.
		if delErr := s3Service.DeleteFile(c.Request.Context(), result.S3Key); delErr != nil {
			log.Printf("failed to clean up orphaned blob %s: %v", result.S3Key, delErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file metadata"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": metadata})
}

// downloadFileHandler streams a blob through the server, verifying the
// stored content hash first. Presigned URLs skip that check; this path
// is for clients that want a verified copy.
func (fr *FileRoutes) downloadFileHandler(c *gin.Context) {
	metadata, ok := fr.resolveFile(c)
	if !ok {
		return
	}

	s3Service := fr.server.GetS3Service()
	exists, err := s3Service.CheckFileExists(c.Request.Context(), metadata.S3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check file"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "File content not found"})
		return
	}

	data, err := s3Service.DownloadFile(c.Request.Context(), metadata.S3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to download file"})
		return
	}

	if metadata.FileHash != "" {
		if err := s3Service.ValidateFileIntegrity(data, metadata.FileHash); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "File failed integrity verification"})
			return
		}
	}

	contentType := metadata.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", metadata.FileName))
	c.Data(http.StatusOK, contentType, data)
}

// deleteFileHandler removes the blob first, then the metadata row, so a
// partial failure cannot leave metadata pointing at missing content.
func (fr *FileRoutes) deleteFileHandler(c *gin.Context) {
	metadata, ok := fr.resolveFile(c)
	if !ok {
		return
	}

	db := fr.server.GetDB()
	s3Service := fr.server.GetS3Service()
	if err := s3Service.DeleteFile(c.Request.Context(), metadata.S3Key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	if err := db.DeleteFileMetadata(metadata.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file metadata"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
