package rfpath

// LinkBudget is the dB arithmetic shared by the single-hop analyzer
// and the relay chain (§4.I step 7).
type LinkBudget struct {
	TXPowerDBm        float64
	TXGainDBi         float64
	RXGainDBi         float64
	RXSensitivityDBm  float64
	FreeSpaceLossDB   float64
	DiffractionLossDB float64

	EIRPdBm           float64
	ReceivedSignalDBm float64
	MarginDB          float64
	Viable            bool
}

// ComputeLinkBudget composes EIRP, received signal, and margin, and
// decides viability (§3 invariant: viable iff received >= sensitivity).
func ComputeLinkBudget(txPowerDBm, txGainDBi, rxGainDBi, rxSensitivityDBm, fspldB, diffractionLossDB float64) LinkBudget {
	eirp := txPowerDBm + txGainDBi
	received := eirp - (fspldB + diffractionLossDB) + rxGainDBi
	margin := received - rxSensitivityDBm

	return LinkBudget{
		TXPowerDBm:        txPowerDBm,
		TXGainDBi:         txGainDBi,
		RXGainDBi:         rxGainDBi,
		RXSensitivityDBm:  rxSensitivityDBm,
		FreeSpaceLossDB:   fspldB,
		DiffractionLossDB: diffractionLossDB,
		EIRPdBm:           eirp,
		ReceivedSignalDBm: received,
		MarginDB:          margin,
		Viable:            margin >= 0,
	}
}
