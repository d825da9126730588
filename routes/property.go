package routes

import (
	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm/clause"
)

type CreateListingInput struct {
	Name         string `json:"name" validate:"required,max=256"`
	Description  string `json:"description"`
	PropertyType string `json:"propertyType" validate:"required,max=64"`
	ListingType  string `json:"listingType" validate:"required,oneof=SALE RENT"`

	Address   string  `json:"address"`
	City      string  `json:"city" validate:"required,max=128"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Bedrooms  int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms int     `json:"bathrooms" validate:"gte=0"`
	Area      float64 `json:"area" validate:"gte=0"`

	SalePrice     float64 `json:"salePrice" validate:"gte=0"`
	RentPrice     float64 `json:"rentPrice" validate:"gte=0"`
	RentFrequency string  `json:"rentFrequency" validate:"omitempty,oneof=MONTHLY YEARLY"`
	ServiceCharge float64 `json:"serviceCharge"`
	CautionFee    float64 `json:"cautionFee"`
	LegalFee      float64 `json:"legalFee"`
	// Optional client-side figure; must match the server recomputation.
	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency" validate:"omitempty,len=3"`

	SubmitForReview bool `json:"submitForReview"`
}

// validateListingPrices enforces that exactly one pricing path matches the
// listing type: SALE carries a sale price, RENT carries a rent price and
// frequency.
func validateListingPrices(ctx iris.Context, listingType string, salePrice, rentPrice float64, rentFrequency string) bool {
	switch listingType {
	case models.ListingTypeSale:
		if salePrice <= 0 {
			utils.CreateFieldError(ctx, "salePrice", "salePrice is required for SALE listings")
			return false
		}
		if rentPrice != 0 || rentFrequency != "" {
			utils.CreateFieldError(ctx, "rentPrice", "rent fields must not be set on a SALE listing")
			return false
		}
	case models.ListingTypeRent:
		if rentPrice <= 0 || rentFrequency == "" {
			utils.CreateFieldError(ctx, "rentPrice", "rentPrice and rentFrequency are required for RENT listings")
			return false
		}
		if salePrice != 0 {
			utils.CreateFieldError(ctx, "salePrice", "salePrice must not be set on a RENT listing")
			return false
		}
	}
	return true
}

func validateAncillaryFees(ctx iris.Context, serviceCharge, cautionFee, legalFee float64) bool {
	if serviceCharge < 0 {
		utils.CreateFieldError(ctx, "serviceCharge", "serviceCharge must not be negative")
		return false
	}
	if cautionFee < 0 {
		utils.CreateFieldError(ctx, "cautionFee", "cautionFee must not be negative")
		return false
	}
	if legalFee < 0 {
		utils.CreateFieldError(ctx, "legalFee", "legalFee must not be negative")
		return false
	}
	return true
}

func CreateProperty(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var input CreateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !validateListingPrices(ctx, input.ListingType, input.SalePrice, input.RentPrice, input.RentFrequency) {
		return
	}
	if !validateAncillaryFees(ctx, input.ServiceCharge, input.CautionFee, input.LegalFee) {
		return
	}

	base := input.SalePrice
	if input.ListingType == models.ListingTypeRent {
		base = input.RentPrice
	}

	fees, err := services.CalculateFees(base, input.ListingType, user.Role,
		input.ServiceCharge, input.CautionFee, input.LegalFee)
	if err != nil {
		utils.CreateFieldError(ctx, "price", err.Error())
		return
	}
	if input.TotalPrice != 0 {
		if err := services.CheckQuotedTotal(input.TotalPrice, fees); err != nil {
			utils.CreateFieldError(ctx, "totalPrice", err.Error())
			return
		}
	}

	listingStatus := models.ListingStatusDraft
	if input.SubmitForReview {
		listingStatus = models.ListingStatusPending
	}

	currency := input.Currency
	if currency == "" {
		currency = "NGN"
	}

	property := models.Property{
		ListerID:        user.ID,
		Name:            input.Name,
		Description:     input.Description,
		PropertyType:    input.PropertyType,
		ListingType:     input.ListingType,
		ListingStatus:   listingStatus,
		PropertyStatus:  models.PropertyStatusAvailable,
		Address:         input.Address,
		City:            input.City,
		State:           input.State,
		Country:         input.Country,
		Lat:             input.Lat,
		Lng:             input.Lng,
		Bedrooms:        input.Bedrooms,
		Bathrooms:       input.Bathrooms,
		Area:            input.Area,
		SalePrice:       input.SalePrice,
		RentPrice:       input.RentPrice,
		RentFrequency:   input.RentFrequency,
		QabaFee:         fees.QabaFee,
		AgentCommission: fees.AgentCommission,
		ServiceCharge:   input.ServiceCharge,
		CautionFee:      input.CautionFee,
		LegalFee:        input.LegalFee,
		TotalPrice:      fees.TotalPrice,
		Currency:        currency,
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if input.SubmitForReview {
		services.NewDispatcher().ListingSubmitted(&property)
	}

	utils.Respond(ctx, iris.StatusCreated, "Listing created", property)
}

type UpdateListingInput struct {
	Name         *string `json:"name" validate:"omitempty,max=256"`
	Description  *string `json:"description"`
	PropertyType *string `json:"propertyType" validate:"omitempty,max=64"`

	Address   *string  `json:"address"`
	City      *string  `json:"city" validate:"omitempty,max=128"`
	State     *string  `json:"state"`
	Country   *string  `json:"country"`
	Bedrooms  *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	Area      *float64 `json:"area" validate:"omitempty,gte=0"`

	SalePrice     *float64 `json:"salePrice" validate:"omitempty,gt=0"`
	RentPrice     *float64 `json:"rentPrice" validate:"omitempty,gt=0"`
	RentFrequency *string  `json:"rentFrequency" validate:"omitempty,oneof=MONTHLY YEARLY"`
	ServiceCharge *float64 `json:"serviceCharge"`
	CautionFee    *float64 `json:"cautionFee"`
	LegalFee      *float64 `json:"legalFee"`
	TotalPrice    *float64 `json:"totalPrice"`

	SubmitForReview bool `json:"submitForReview"`
}

func (in *UpdateListingInput) touchesPricing() bool {
	return in.SalePrice != nil || in.RentPrice != nil || in.RentFrequency != nil ||
		in.ServiceCharge != nil || in.CautionFee != nil || in.LegalFee != nil || in.TotalPrice != nil
}

// UpdateProperty applies a partial edit. Fees are recomputed only when a
// price-affecting field is present, with omitted fields defaulting to the
// stored values.
func UpdateProperty(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}
	if property.ListerID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}

	var input UpdateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Name != nil {
		property.Name = *input.Name
	}
	if input.Description != nil {
		property.Description = *input.Description
	}
	if input.PropertyType != nil {
		property.PropertyType = *input.PropertyType
	}
	if input.Address != nil {
		property.Address = *input.Address
	}
	if input.City != nil {
		property.City = *input.City
	}
	if input.State != nil {
		property.State = *input.State
	}
	if input.Country != nil {
		property.Country = *input.Country
	}
	if input.Bedrooms != nil {
		property.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		property.Bathrooms = *input.Bathrooms
	}
	if input.Area != nil {
		property.Area = *input.Area
	}

	if input.touchesPricing() {
		if input.SalePrice != nil {
			property.SalePrice = *input.SalePrice
		}
		if input.RentPrice != nil {
			property.RentPrice = *input.RentPrice
		}
		if input.RentFrequency != nil {
			property.RentFrequency = *input.RentFrequency
		}
		if input.ServiceCharge != nil {
			property.ServiceCharge = *input.ServiceCharge
		}
		if input.CautionFee != nil {
			property.CautionFee = *input.CautionFee
		}
		if input.LegalFee != nil {
			property.LegalFee = *input.LegalFee
		}

		if !validateListingPrices(ctx, property.ListingType, property.SalePrice, property.RentPrice, property.RentFrequency) {
			return
		}
		if !validateAncillaryFees(ctx, property.ServiceCharge, property.CautionFee, property.LegalFee) {
			return
		}

		var lister models.User
		if err := storage.DB.First(&lister, property.ListerID).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		fees, err := services.CalculateFees(property.BasePrice(), property.ListingType, lister.Role,
			property.ServiceCharge, property.CautionFee, property.LegalFee)
		if err != nil {
			utils.CreateFieldError(ctx, "price", err.Error())
			return
		}
		if input.TotalPrice != nil {
			if err := services.CheckQuotedTotal(*input.TotalPrice, fees); err != nil {
				utils.CreateFieldError(ctx, "totalPrice", err.Error())
				return
			}
		}
		property.QabaFee = fees.QabaFee
		property.AgentCommission = fees.AgentCommission
		property.TotalPrice = fees.TotalPrice
	}

	submitted := false
	if input.SubmitForReview && property.ListingStatus != models.ListingStatusApproved &&
		property.ListingStatus != models.ListingStatusPending {
		property.ListingStatus = models.ListingStatusPending
		submitted = true
	}

	if err := storage.DB.Save(property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if submitted {
		services.NewDispatcher().ListingSubmitted(property)
	}

	utils.Respond(ctx, iris.StatusOK, "Listing updated", property)
}

// SubmitPropertyForReview moves a draft or declined listing into the
// approval queue.
func SubmitPropertyForReview(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}
	if property.ListerID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}
	if property.ListingStatus == models.ListingStatusApproved {
		utils.CreateFieldError(ctx, "listingStatus", "Listing is already approved")
		return
	}
	if property.ListingStatus == models.ListingStatusPending {
		utils.CreateFieldError(ctx, "listingStatus", "Listing is already awaiting review")
		return
	}

	if err := storage.DB.Model(property).Update("listing_status", models.ListingStatusPending).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	property.ListingStatus = models.ListingStatusPending

	services.NewDispatcher().ListingSubmitted(property)

	utils.Respond(ctx, iris.StatusOK, "Listing submitted for review", property)
}

func GetProperty(ctx iris.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var property models.Property
	result := storage.DB.Preload("Images").Preload("Videos").
		Preload("Reviews", "status = ?", models.ReviewStatusApproved).
		Preload("Lister").Limit(1).Find(&property, id)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Listing", &property)
}

// ListProperties is the public browse endpoint: approved listings only, with
// optional filters and pagination.
func ListProperties(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.Property{}).
		Where("listing_status = ?", models.ListingStatusApproved)

	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if listingType := ctx.URLParam("listing_type"); listingType != "" {
		query = query.Where("listing_type = ?", listingType)
	}
	if propertyType := ctx.URLParam("property_type"); propertyType != "" {
		query = query.Where("property_type = ?", propertyType)
	}
	if status := ctx.URLParam("property_status"); status != "" {
		query = query.Where("property_status = ?", status)
	}
	if minPrice := ctx.URLParamFloat64Default("min_price", 0); minPrice > 0 {
		query = query.Where("total_price >= ?", minPrice)
	}
	if maxPrice := ctx.URLParamFloat64Default("max_price", 0); maxPrice > 0 {
		query = query.Where("total_price <= ?", maxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var properties []models.Property
	if err := query.Preload("Images").Order("created_at DESC").
		Offset(offset).Limit(perPage).Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Listings", properties, page, perPage, total)
}

// GetMyProperties returns the caller's own listings in every status.
func GetMyProperties(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var properties []models.Property
	if err := storage.DB.Preload(clause.Associations).
		Where("lister_id = ?", user.ID).Order("created_at DESC").
		Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Your listings", properties)
}

func DeleteProperty(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}
	if property.ListerID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Select(clause.Associations).Delete(property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Listing deleted", nil)
}
