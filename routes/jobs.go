package routes

import (
	"fmt"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
)

// ListJobs is public and only shows open postings.
func ListJobs(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.Job{}).Where("status = ?", models.JobStatusOpen)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var jobs []models.Job
	if err := query.Order("created_at DESC").Offset(offset).Limit(perPage).
		Find(&jobs).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Open positions", jobs, page, perPage, total)
}

func GetJob(ctx iris.Context) {
	jobID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var job models.Job
	result := storage.DB.Where("status = ?", models.JobStatusOpen).Limit(1).Find(&job, jobID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Job", job)
}

// ApplyToJob accepts a multipart application with a CV attachment. One
// application per applicant per job.
func ApplyToJob(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}
	jobID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var job models.Job
	result := storage.DB.Where("status = ?", models.JobStatusOpen).Limit(1).Find(&job, jobID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var existing models.JobApplication
	dup := storage.DB.Where("job_id = ? AND applicant_id = ?", job.ID, user.ID).
		Limit(1).Find(&existing)
	if dup.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if dup.RowsAffected > 0 {
		utils.CreateFieldError(ctx, "jobID", "You have already applied for this position")
		return
	}

	file, header, err := ctx.FormFile("cv")
	if err != nil {
		utils.CreateFieldError(ctx, "cv", "A CV file is required")
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header.Filename, header.Size, utils.CVExtensions, utils.MaxCVSize); err != nil {
		utils.CreateFieldError(ctx, "cv", err.Error())
		return
	}

	cvURL, err := storage.UploadFile(file, header.Filename, "raw",
		fmt.Sprintf("cv_%d_%s", job.ID, utils.GenerateShortToken(4)))
	if err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "CV upload failed", iris.Map{"cv": err.Error()})
		return
	}

	application := models.JobApplication{
		JobID:       job.ID,
		ApplicantID: user.ID,
		CoverLetter: ctx.FormValue("coverLetter"),
		CVURL:       cvURL,
	}
	if err := storage.DB.Create(&application).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewDispatcher().JobApplicationReceived(&job, &application)

	utils.Respond(ctx, iris.StatusCreated, "Application submitted", application)
}

type JobInput struct {
	Title          string `json:"title" validate:"required,max=256"`
	Description    string `json:"description" validate:"required"`
	Location       string `json:"location" validate:"max=256"`
	EmploymentType string `json:"employmentType" validate:"omitempty,oneof=full_time part_time contract"`
	Status         string `json:"status" validate:"omitempty,oneof=OPEN CLOSED"`
}

// CreateJob is admin-only (enforced by route middleware).
func CreateJob(ctx iris.Context) {
	var input JobInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	status := input.Status
	if status == "" {
		status = models.JobStatusOpen
	}

	job := models.Job{
		Title:          input.Title,
		Description:    input.Description,
		Location:       input.Location,
		EmploymentType: input.EmploymentType,
		Status:         status,
		PostedByID:     utils.ContextUserID(ctx),
	}
	if err := storage.DB.Create(&job).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusCreated, "Job posted", job)
}

func UpdateJob(ctx iris.Context) {
	jobID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var job models.Job
	result := storage.DB.Limit(1).Find(&job, jobID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var input JobInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	job.Title = input.Title
	job.Description = input.Description
	job.Location = input.Location
	if input.EmploymentType != "" {
		job.EmploymentType = input.EmploymentType
	}
	if input.Status != "" {
		job.Status = input.Status
	}

	if err := storage.DB.Save(&job).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Job updated", job)
}

func DeleteJob(ctx iris.Context) {
	jobID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	result := storage.DB.Delete(&models.Job{}, jobID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Job deleted", nil)
}

// ListJobApplications is admin-only.
func ListJobApplications(ctx iris.Context) {
	jobID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var applications []models.JobApplication
	if err := storage.DB.Preload("Applicant").Where("job_id = ?", jobID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Applications", applications)
}
