package corpus

import (
	"fmt"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Seed returns the built-in sample corpus used when no snapshot and no
// external corpus file exist, so a fresh checkout answers queries without any
// data provisioning.
func Seed() []domain.Notice {
	titles := []string{
		"Construction of sustainable energy infrastructure for commercial buildings",
		"Development of AI-powered healthcare monitoring systems",
		"Implementation of cloud-based enterprise resource planning solutions",
		"Supply of eco-friendly office equipment and furniture",
		"Design and construction of smart city transportation systems",
		"Provision of cybersecurity consulting and implementation services",
		"Development of mobile applications for government services",
		"Installation of renewable energy systems for public facilities",
		"Supply of advanced medical equipment for hospitals",
		"Implementation of blockchain-based supply chain solutions",
		"Construction of educational facilities with modern technology",
		"Development of data analytics platforms for business intelligence",
		"Provision of IT infrastructure modernization services",
		"Design of sustainable water management systems",
		"Supply and installation of industrial automation equipment",
	}

	notices := make([]domain.Notice, len(titles))
	for i, title := range titles {
		notices[i] = domain.Notice{
			ID:    fmt.Sprintf("seed-%03d", i+1),
			Title: title,
		}
	}
	return notices
}
