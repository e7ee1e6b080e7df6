package orchestrator

import (
	"context"
	"slices"

	"idproof/internal/audit"
	"idproof/internal/proofing"
	"idproof/internal/proofing/ports"
)

// proofResolution runs the resolution stage and, only when it succeeded and
// the request asks for it, the state ID stage.
func (r *run) proofResolution(ctx context.Context, callback bool) (string, error) {
	primary, dependent := r.svc.catalog.Resolution, r.svc.catalog.StateID
	withStateID := r.req.ShouldProofStateID

	keys := slices.Clone(primary.Keys)
	if withStateID {
		keys = append(keys, dependent.Keys...)
	}
	settings, token, err := r.prepare(ctx, callback, keys...)
	if err != nil {
		return "", err
	}

	resolution, err := primary.New(settings)
	if err != nil {
		return "", err
	}
	var stateID ports.Proofer
	if withStateID {
		if stateID, err = dependent.New(settings); err != nil {
			return "", err
		}
	}

	ok, err := r.proof(ctx, proofing.StageResolution, primary.Name, resolution)
	if err != nil {
		return "", err
	}
	if !ok || !withStateID {
		return token, nil
	}
	if _, err := r.proof(ctx, proofing.StageStateID, dependent.Name, stateID); err != nil {
		return "", err
	}
	return token, nil
}

func (r *run) proofAddress(ctx context.Context, callback bool) (string, error) {
	v := r.svc.catalog.Address
	settings, token, err := r.prepare(ctx, callback, v.Keys...)
	if err != nil {
		return "", err
	}
	proofer, err := v.New(settings)
	if err != nil {
		return "", err
	}
	if _, err := r.proof(ctx, proofing.StageAddress, v.Name, proofer); err != nil {
		return "", err
	}
	return token, nil
}

// proof runs a PII stage and merges its outcome. context.stages gets the entry
// before the vendor is called.
func (r *run) proof(ctx context.Context, stage proofing.Stage, vendor string, p ports.Proofer) (bool, error) {
	r.result.AddStage(stage, vendor)
	out, err := runStage(ctx, r, stage, vendor, func(ctx context.Context) (proofing.Outcome, error) {
		return p.Proof(ctx, r.req.ApplicantPII)
	})
	if err != nil {
		return false, err
	}
	return r.record(stage, vendor, out), nil
}

// missingInstance is the face match outcome when the document submission
// never produced an instance to take the portrait from.
var missingInstance = proofing.Outcome{
	Errors: map[string]string{"selfie": "no document instance to match against"},
}

// proofDocument downloads the images, submits the document and, when
// liveness checking is enabled, runs face match and liveness. Every vendor
// stage is attempted; the result succeeds only if all of them did.
func (r *run) proofDocument(ctx context.Context, callback bool) (string, error) {
	doc := r.req.Document
	if doc == nil {
		return "", proofing.NewError(proofing.CategoryInvalidRequest, "proof document", "document fields are required", nil)
	}
	v := r.svc.catalog.Document
	settings, token, err := r.prepare(ctx, callback, v.Keys...)
	if err != nil {
		return "", err
	}
	proofer, err := v.New(settings)
	if err != nil {
		return "", err
	}
	if r.svc.images == nil {
		return "", proofing.NewError(proofing.CategoryMisconfigured, "proof document", "no image loader configured", nil)
	}

	imgs, err := runStage(ctx, r, proofing.StageImages, "", func(ctx context.Context) (ports.Images, error) {
		return r.svc.images.Load(ctx, *doc)
	})
	if err != nil {
		return "", err
	}
	r.statuses = append(r.statuses, audit.StageStatus{Stage: string(proofing.StageImages), Success: true})

	r.result.AddStage(proofing.StageDocument, v.Name)
	submitted, err := runStage(ctx, r, proofing.StageDocument, v.Name, func(ctx context.Context) (ports.DocumentOutcome, error) {
		return proofer.PostImages(ctx, imgs.Front, imgs.Back)
	})
	if err != nil {
		return "", err
	}
	success := r.record(proofing.StageDocument, v.Name, submitted.Outcome)

	if doc.LivenessCheckingEnabled {
		r.result.AddStage(proofing.StageFacialMatch, v.Name)
		face := missingInstance
		if submitted.InstanceID != "" {
			face, err = runStage(ctx, r, proofing.StageFacialMatch, v.Name, func(ctx context.Context) (proofing.Outcome, error) {
				return proofer.MatchFace(ctx, submitted.InstanceID, imgs.Selfie)
			})
			if err != nil {
				return "", err
			}
		}
		success = r.record(proofing.StageFacialMatch, v.Name, face) && success

		r.result.AddStage(proofing.StageLiveness, v.Name)
		live, err := runStage(ctx, r, proofing.StageLiveness, v.Name, func(ctx context.Context) (proofing.Outcome, error) {
			return proofer.CheckLiveness(ctx, imgs.Selfie)
		})
		if err != nil {
			return "", err
		}
		success = r.record(proofing.StageLiveness, v.Name, live) && success
	}

	r.result.Success = success
	return token, nil
}
