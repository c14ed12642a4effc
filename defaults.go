package siteadmin

// DefaultSiteConfig returns the document the Config Store is seeded with on
// first read. Each call returns a fresh copy.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Hero: Hero{
			Title:          "Get local jobs done.",
			Highlight:      "Fast.",
			Subtitle:       "Gumboot connects people who need a hand with locals who can help — mowing, moving, cleaning, painting, delivery and more.",
			AppStoreLabel:  "App Store (soon)",
			PlayStoreLabel: "Google Play (soon)",
			Tagline:        "Free to download • Secure Stripe payments • NZ-first launch",
		},
		Features: []Feature{
			{Title: "Post in minutes", Desc: "Describe the job, add photos, set your budget and location."},
			{Title: "Smart matching", Desc: "Locals nearby get notified and send offers with timelines."},
			{Title: "Secure payments", Desc: "Funds held in escrow via Stripe. Release when you’re happy."},
			{Title: "Real reviews", Desc: "Build trust with verified IDs and two-way ratings."},
			{Title: "Messaging & photos", Desc: "Chat, share images, and coordinate details in-app."},
			{Title: "Dispute support", Desc: "Our team is here to help if something goes sideways."},
		},
		Blogs: []BlogEntry{
			{
				ID:          "intro-gumboot",
				Slug:        "what-is-gumboot-local-jobs-app",
				Title:       "What is Gumboot? The Kiwi Way to Get Local Jobs Done Fast",
				Excerpt:     "Gumboot is a New Zealand–built app that connects people who need a hand with locals who can help.",
				Body:        "Coming soon.\n\nThis post will explain what Gumboot is, who it's for, and how it works in everyday Kiwi life.",
				PublishedAt: "2025-11-18",
			},
			{
				ID:          "why-local-matters",
				Slug:        "why-local-jobs-and-local-helpers-matter",
				Title:       "Why Local Jobs and Local Helpers Matter",
				Excerpt:     "Supporting locals doesn’t just get the job done – it keeps money and skills in your community.",
				Body:        "Coming soon.\n\nThis post will cover the benefits of keeping work local, for both posters and taskers.",
				PublishedAt: "2025-11-18",
			},
			{
				ID:          "how-to-post-great-job",
				Slug:        "how-to-post-a-great-gumboot-job",
				Title:       "How to Post a Great Gumboot Job (and Get Better Offers)",
				Excerpt:     "Clear photos, honest descriptions and fair budgets lead to faster, better offers on Gumboot.",
				Body:        "Coming soon.\n\nThis post will give tips on writing great job posts, choosing budgets and picking offers.",
				PublishedAt: "2025-11-18",
			},
		},
	}
}
