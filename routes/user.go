package routes

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/MicahParks/keyfunc"
	jwtgo "github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	FirstName   string `json:"firstName" validate:"required,max=256"`
	LastName    string `json:"lastName" validate:"required,max=256"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"max=20"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
	Role        string `json:"role" validate:"omitempty,oneof=client agent landlord"`
}

func Register(ctx iris.Context) {
	var input RegisterUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.User
	exists, err := getAndHandleUserExists(&existing, input.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if exists {
		utils.CreateError(ctx, iris.StatusConflict, "An account with this email already exists", nil)
		return
	}

	hashed, err := hashAndSaltPassword(input.Password)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	role := input.Role
	if role == "" {
		role = models.RoleClient
	}

	user := models.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       strings.ToLower(input.Email),
		PhoneNumber: input.PhoneNumber,
		Password:    hashed,
		Role:        role,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	sendVerificationOTP(&user)

	returnUser(&user, iris.StatusCreated, "Account created. Check your email for a verification code.", ctx)
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(ctx iris.Context) {
	var input LoginUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	exists, err := getAndHandleUserExists(&user, input.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !exists {
		utils.CreateError(ctx, iris.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	if user.SocialLogin {
		utils.CreateError(ctx, iris.StatusBadRequest, "This account uses social sign-in", nil)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		utils.CreateError(ctx, iris.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	returnUser(&user, iris.StatusOK, "Logged in", ctx)
}

type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// VerifyOTP confirms the emailed one-time code and marks the account's email
// as verified.
func VerifyOTP(ctx iris.Context) {
	var input VerifyOTPInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	exists, err := getAndHandleUserExists(&user, input.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !exists {
		utils.CreateNotFound(ctx)
		return
	}

	if !utils.CheckOTP(otpKey(user.Email), input.Code) {
		utils.CreateFieldError(ctx, "code", "The verification code is invalid or has expired")
		return
	}

	storage.DB.Model(&user).Update("email_verified", true)
	user.EmailVerified = true

	returnUser(&user, iris.StatusOK, "Email verified", ctx)
}

type ResendOTPInput struct {
	Email string `json:"email" validate:"required,email"`
}

func ResendOTP(ctx iris.Context) {
	var input ResendOTPInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	exists, err := getAndHandleUserExists(&user, input.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	// Do not leak whether the account exists.
	if exists && !user.EmailVerified {
		sendVerificationOTP(&user)
	}
	utils.Respond(ctx, iris.StatusOK, "If the account exists, a new code has been sent", nil)
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

func ForgotPassword(ctx iris.Context) {
	var input ForgotPasswordInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	exists, err := getAndHandleUserExists(&user, input.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if exists && !user.SocialLogin {
		token, tokenErr := utils.CreateForgotPasswordToken(user.ID, user.Email)
		if tokenErr == nil {
			link := os.Getenv("FRONTEND_URL") + "/reset-password?token=" + token
			if mailErr := services.SendMail(user.Email, "Reset your Qaba password",
				"Use the link below to reset your password. It expires in 10 minutes.<br/><a href=\""+link+"\">Reset password</a>"); mailErr != nil {
				log.Printf("password reset email to %s failed: %v", user.Email, mailErr)
			}
		}
	}

	utils.Respond(ctx, iris.StatusOK, "If the account exists, a reset link has been sent", nil)
}

type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,max=256"`
}

func ResetPassword(ctx iris.Context) {
	var input ResetPasswordInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwtmiddlewareClaims(ctx)
	if claims == nil {
		utils.CreateUnauthorized(ctx)
		return
	}

	hashed, err := hashAndSaltPassword(input.Password)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Model(&models.User{}).Where("id = ?", claims.ID).
		Update("password", hashed).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Password updated", nil)
}

type GoogleSignInInput struct {
	AccessToken string `json:"accessToken"`
	IDToken     string `json:"idToken"`
	Role        string `json:"role" validate:"omitempty,oneof=client agent landlord"`
}

// GoogleLoginOrSignUp accepts either an OAuth access token (resolved against
// the userinfo endpoint) or an ID token verified against Google's JWKS.
func GoogleLoginOrSignUp(ctx iris.Context) {
	var input GoogleSignInInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var email, firstName, lastName, avatar string
	var err error
	switch {
	case input.IDToken != "":
		email, firstName, lastName, avatar, err = googleProfileFromIDToken(input.IDToken)
	case input.AccessToken != "":
		email, firstName, lastName, avatar, err = googleProfileFromAccessToken(input.AccessToken)
	default:
		utils.CreateFieldError(ctx, "accessToken", "Either accessToken or idToken is required")
		return
	}
	if err != nil || email == "" {
		utils.CreateError(ctx, iris.StatusUnauthorized, "Google sign-in could not be verified", nil)
		return
	}

	var user models.User
	exists, dbErr := getAndHandleUserExists(&user, email)
	if dbErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !exists {
		role := input.Role
		if role == "" {
			role = models.RoleClient
		}
		user = models.User{
			FirstName:      firstName,
			LastName:       lastName,
			Email:          strings.ToLower(email),
			Role:           role,
			SocialLogin:    true,
			SocialProvider: "google",
			AvatarURL:      avatar,
			EmailVerified:  true,
		}
		if err := storage.DB.Create(&user).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	} else if !user.SocialLogin {
		utils.CreateError(ctx, iris.StatusBadRequest, "This account uses password sign-in", nil)
		return
	}

	returnUser(&user, iris.StatusOK, "Logged in", ctx)
}

func googleProfileFromAccessToken(accessToken string) (email, firstName, lastName, avatar string, err error) {
	req, err := http.NewRequest(http.MethodGet, "https://www.googleapis.com/userinfo/v2/me", nil)
	if err != nil {
		return "", "", "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", "", "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", "", "", "", err
	}

	var profile struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", "", "", "", err
	}
	return profile.Email, profile.GivenName, profile.FamilyName, profile.Picture, nil
}

func googleProfileFromIDToken(idToken string) (email, firstName, lastName, avatar string, err error) {
	res, err := http.Get("https://www.googleapis.com/oauth2/v3/certs")
	if err != nil {
		return "", "", "", "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", "", "", "", err
	}

	jwks, err := keyfunc.NewJSON(body)
	if err != nil {
		return "", "", "", "", err
	}

	claims := jwtgo.MapClaims{}
	if _, err := jwtgo.ParseWithClaims(idToken, claims, jwks.Keyfunc); err != nil {
		return "", "", "", "", err
	}

	email, _ = claims["email"].(string)
	firstName, _ = claims["given_name"].(string)
	lastName, _ = claims["family_name"].(string)
	avatar, _ = claims["picture"].(string)
	return email, firstName, lastName, avatar, nil
}

// GetProfile returns the caller's account plus the role profile, creating the
// profile row on first access.
func GetProfile(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	profile, err := services.EnsureProfile(storage.DB, user)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Profile", iris.Map{"user": user, "profile": profile})
}

type UpdateProfileInput struct {
	FirstName   *string `json:"firstName" validate:"omitempty,max=256"`
	LastName    *string `json:"lastName" validate:"omitempty,max=256"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=20"`
	AvatarImage *string `json:"avatarImage"` // base64 payload

	// Role-profile fields; only the ones matching the caller's role apply.
	PreferredCity *string `json:"preferredCity"`
	BudgetNote    *string `json:"budgetNote"`
	AgencyName    *string `json:"agencyName"`
	LicenseNumber *string `json:"licenseNumber"`
	Bio           *string `json:"bio"`
	YearsActive   *int    `json:"yearsActive"`
	CompanyName   *string `json:"companyName"`
	Address       *string `json:"address"`
}

func UpdateProfile(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = *input.PhoneNumber
	}
	if input.AvatarImage != nil && *input.AvatarImage != "" {
		url, upErr := storage.UploadBase64Image(*input.AvatarImage, "avatar_"+utils.GenerateShortToken(6))
		if upErr != nil {
			utils.CreateFieldError(ctx, "avatarImage", "Avatar upload failed")
			return
		}
		updates["avatar_url"] = url
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(user).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	profile, err := services.EnsureProfile(storage.DB, user)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	applyProfileUpdates(profile, &input)

	utils.Respond(ctx, iris.StatusOK, "Profile updated", iris.Map{"user": user, "profile": profile})
}

func applyProfileUpdates(profile interface{}, input *UpdateProfileInput) {
	switch p := profile.(type) {
	case *models.ClientProfile:
		if input.PreferredCity != nil {
			p.PreferredCity = *input.PreferredCity
		}
		if input.BudgetNote != nil {
			p.BudgetNote = *input.BudgetNote
		}
		storage.DB.Save(p)
	case *models.AgentProfile:
		if input.AgencyName != nil {
			p.AgencyName = *input.AgencyName
		}
		if input.LicenseNumber != nil {
			p.LicenseNumber = *input.LicenseNumber
		}
		if input.Bio != nil {
			p.Bio = *input.Bio
		}
		if input.YearsActive != nil {
			p.YearsActive = *input.YearsActive
		}
		storage.DB.Save(p)
	case *models.LandlordProfile:
		if input.CompanyName != nil {
			p.CompanyName = *input.CompanyName
		}
		if input.Address != nil {
			p.Address = *input.Address
		}
		storage.DB.Save(p)
	case *models.AdminProfile:
		// No caller-editable admin profile fields.
	}
}

func sendVerificationOTP(user *models.User) {
	code, err := utils.GenerateOTP(otpKey(user.Email))
	if err != nil {
		log.Printf("OTP generation for %s failed: %v", user.Email, err)
		return
	}
	if err := services.SendMail(user.Email, "Your Qaba verification code",
		"Your verification code is <b>"+code+"</b>. It expires in 10 minutes."); err != nil {
		log.Printf("OTP email to %s failed: %v", user.Email, err)
	}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(email)
}

func getAndHandleUserExists(user *models.User, email string) (bool, error) {
	result := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(user)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func returnUser(user *models.User, status int, message string, ctx iris.Context) {
	tokenPair, err := utils.CreateTokenPair(user.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, status, message, iris.Map{
		"user":         user,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
