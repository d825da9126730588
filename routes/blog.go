package routes

import (
	"strings"
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// ListBlogPosts is public and only shows published posts.
func ListBlogPosts(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.BlogPost{}).Where("status = ?", models.BlogStatusPublished)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var posts []models.BlogPost
	if err := query.Preload("Author").Order("published_at DESC").
		Offset(offset).Limit(perPage).Find(&posts).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Blog posts", posts, page, perPage, total)
}

// GetBlogPost serves a published post by slug and bumps its view counter.
func GetBlogPost(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var post models.BlogPost
	result := storage.DB.Preload("Author").
		Where("slug = ? AND status = ?", slug, models.BlogStatusPublished).
		Limit(1).Find(&post)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	storage.DB.Model(&post).UpdateColumn("views", gorm.Expr("views + 1"))
	post.Views++

	utils.Respond(ctx, iris.StatusOK, "Blog post", &post)
}

type BlogPostInput struct {
	Title      string `json:"title" validate:"required,max=256"`
	Body       string `json:"body" validate:"required"`
	CoverImage string `json:"coverImage"` // base64 payload
	Status     string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CreateBlogPost is admin-only.
func CreateBlogPost(ctx iris.Context) {
	var input BlogPostInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	post := models.BlogPost{
		AuthorID: utils.ContextUserID(ctx),
		Title:    input.Title,
		Slug:     slugify(input.Title) + "-" + utils.GenerateShortToken(3),
		Body:     input.Body,
		Status:   models.BlogStatusDraft,
	}
	if input.Status == models.BlogStatusPublished {
		now := time.Now()
		post.Status = models.BlogStatusPublished
		post.PublishedAt = &now
	}

	if input.CoverImage != "" {
		url, err := storage.UploadBase64Image(input.CoverImage, "blog_"+utils.GenerateShortToken(6))
		if err != nil {
			utils.CreateFieldError(ctx, "coverImage", "Cover image upload failed")
			return
		}
		post.CoverImageURL = url
	}

	if err := storage.DB.Create(&post).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusCreated, "Blog post created", post)
}

// UpdateBlogPost is admin-only.
func UpdateBlogPost(ctx iris.Context) {
	postID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var post models.BlogPost
	result := storage.DB.Limit(1).Find(&post, postID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var input BlogPostInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	post.Title = input.Title
	post.Body = input.Body
	if input.CoverImage != "" {
		url, err := storage.UploadBase64Image(input.CoverImage, "blog_"+utils.GenerateShortToken(6))
		if err != nil {
			utils.CreateFieldError(ctx, "coverImage", "Cover image upload failed")
			return
		}
		post.CoverImageURL = url
	}
	if input.Status != "" && input.Status != post.Status {
		post.Status = input.Status
		if input.Status == models.BlogStatusPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	}

	if err := storage.DB.Save(&post).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Blog post updated", post)
}

// DeleteBlogPost is admin-only.
func DeleteBlogPost(ctx iris.Context) {
	postID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	result := storage.DB.Delete(&models.BlogPost{}, postID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Blog post deleted", nil)
}
