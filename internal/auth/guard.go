package auth

import "github.com/light11014/Moodmate-Backend/internal/model"

// CheckOwnership fails with model.AccessDeniedError unless requesterID owns the resource.
func CheckOwnership(resourceOwnerID, requesterID, action string) error {
	if resourceOwnerID != requesterID {
		return model.NewAccessDeniedError(action)
	}
	return nil
}
