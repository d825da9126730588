package routes

import (
	"fmt"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
)

// propertyForMediaMutation loads the target property and checks that the
// caller owns it or is staff.
func propertyForMediaMutation(ctx iris.Context) (*models.Property, *models.User) {
	user := currentUser(ctx)
	if user == nil {
		return nil, nil
	}
	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return nil, nil
	}
	if property.ListerID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return nil, nil
	}
	return property, user
}

func UploadPropertyImage(ctx iris.Context) {
	property, user := propertyForMediaMutation(ctx)
	if property == nil {
		return
	}

	var count int64
	storage.DB.Model(&models.PropertyImage{}).Where("property_id = ?", property.ID).Count(&count)
	if count >= utils.MaxImagesPerListing {
		utils.CreateFieldError(ctx, "image",
			fmt.Sprintf("A listing can have at most %d images", utils.MaxImagesPerListing))
		return
	}

	file, header, err := ctx.FormFile("image")
	if err != nil {
		utils.CreateFieldError(ctx, "image", "An image file is required")
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header.Filename, header.Size, utils.ImageExtensions, utils.MaxDocumentSize); err != nil {
		utils.CreateFieldError(ctx, "image", err.Error())
		return
	}

	url, err := storage.UploadFile(file, header.Filename, "image",
		fmt.Sprintf("property_%d_img_%s", property.ID, utils.GenerateShortToken(4)))
	if err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "Image upload failed", iris.Map{"image": err.Error()})
		return
	}

	image := models.PropertyImage{
		PropertyID: property.ID,
		UploaderID: user.ID,
		URL:        url,
		Caption:    ctx.FormValue("caption"),
	}
	if err := storage.DB.Create(&image).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusCreated, "Image uploaded", image)
}

func UploadPropertyVideo(ctx iris.Context) {
	property, user := propertyForMediaMutation(ctx)
	if property == nil {
		return
	}

	file, header, err := ctx.FormFile("video")
	if err != nil {
		utils.CreateFieldError(ctx, "video", "A video file is required")
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header.Filename, header.Size, utils.VideoExtensions, utils.MaxVideoSize); err != nil {
		utils.CreateFieldError(ctx, "video", err.Error())
		return
	}

	url, err := storage.UploadFile(file, header.Filename, "video",
		fmt.Sprintf("property_%d_vid_%s", property.ID, utils.GenerateShortToken(4)))
	if err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "Video upload failed", iris.Map{"video": err.Error()})
		return
	}

	video := models.PropertyVideo{
		PropertyID: property.ID,
		UploaderID: user.ID,
		URL:        url,
		Caption:    ctx.FormValue("caption"),
	}
	if err := storage.DB.Create(&video).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusCreated, "Video uploaded", video)
}

func UploadPropertyDocument(ctx iris.Context) {
	property, user := propertyForMediaMutation(ctx)
	if property == nil {
		return
	}

	file, header, err := ctx.FormFile("document")
	if err != nil {
		utils.CreateFieldError(ctx, "document", "A document file is required")
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header.Filename, header.Size, utils.DocumentExtensions, utils.MaxDocumentSize); err != nil {
		utils.CreateFieldError(ctx, "document", err.Error())
		return
	}

	url, err := storage.UploadFile(file, header.Filename, "raw",
		fmt.Sprintf("property_%d_doc_%s", property.ID, utils.GenerateShortToken(4)))
	if err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "Document upload failed", iris.Map{"document": err.Error()})
		return
	}

	document := models.PropertyDocument{
		PropertyID:   property.ID,
		UploaderID:   user.ID,
		URL:          url,
		FileName:     header.Filename,
		DocumentType: ctx.FormValue("documentType"),
	}
	if err := storage.DB.Create(&document).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusCreated, "Document uploaded", document)
}

// ListPropertyDocuments is restricted to the lister and staff.
func ListPropertyDocuments(ctx iris.Context) {
	property, _ := propertyForMediaMutation(ctx)
	if property == nil {
		return
	}

	var documents []models.PropertyDocument
	if err := storage.DB.Where("property_id = ?", property.ID).Find(&documents).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Documents", documents)
}

func DeletePropertyImage(ctx iris.Context) {
	deletePropertyMedia(ctx, &models.PropertyImage{})
}

func DeletePropertyVideo(ctx iris.Context) {
	deletePropertyMedia(ctx, &models.PropertyVideo{})
}

func DeletePropertyDocument(ctx iris.Context) {
	deletePropertyMedia(ctx, &models.PropertyDocument{})
}

func deletePropertyMedia(ctx iris.Context, model interface{}) {
	user := currentUser(ctx)
	if user == nil {
		return
	}
	mediaID, ok := paramUint(ctx, "mediaID")
	if !ok {
		return
	}

	var propertyID uint
	var url string
	switch m := model.(type) {
	case *models.PropertyImage:
		if err := storage.DB.First(m, mediaID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		propertyID, url = m.PropertyID, m.URL
	case *models.PropertyVideo:
		if err := storage.DB.First(m, mediaID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		propertyID, url = m.PropertyID, m.URL
	case *models.PropertyDocument:
		if err := storage.DB.First(m, mediaID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		propertyID, url = m.PropertyID, m.URL
	}

	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if property.ListerID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(model).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	// Remote asset cleanup is best-effort.
	storage.DeleteImage(url)

	utils.Respond(ctx, iris.StatusOK, "Media deleted", nil)
}
